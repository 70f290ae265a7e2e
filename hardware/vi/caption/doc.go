// This file is part of GopherVI.
//
// GopherVI is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherVI is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherVI.  If not, see <https://www.gnu.org/licenses/>.

// Package caption generates EIA-608 closed captions on an NTSC video
// signal. EIA-608 transmits caption data as a bi-phase signal on line 21
// of the vertical blanking interval; the video chip is flexible enough to
// emit a compliant waveform while still displaying a framebuffer, by
// briefly retargeting the scanout at a prepared one-line buffer during
// the blanking interval and restoring it before active video begins.
//
// Create an Injector with New() once the video mode has been configured,
// then call Start(). Start derives the signal parameters from the current
// driver state, so any subsequent change to the video configuration
// requires a Stop()/Start() pair around it.
//
// Captions are prepared with Prepare() and displayed with Show(). Prepare
// accepts a UTF-8 string and takes care of character encoding, word wrap
// and centering; a caption of any useful length takes on the order of a
// second to transmit, so prepare ahead of the moment the caption must
// appear. Raw 16-bit EIA-608 words (for instance from a Scenarist SCC
// file) can be fed directly with WriteRaw.
//
// EIA-608 is an NTSC standard. New() refuses PAL and M-PAL drivers.
package caption
