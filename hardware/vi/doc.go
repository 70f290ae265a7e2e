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

// Package vi is the driver for the Ultra 64 Video Interface, the fixed
// function coprocessor that scans a framebuffer out to the television. The
// chip is controlled through fourteen 32-bit registers covering sync timing,
// the framebuffer origin, the active display area and the resampling scale
// factors.
//
// Most timing registers can only be changed safely while the beam is inside
// the vertical blanking period. Changing them mid-picture desyncs the
// television, and some illegal combinations hang the chip outright. The
// driver therefore never writes registers directly on behalf of the caller.
// Instead every write lands in a shadow copy of the register file and is
// marked pending; pending registers are committed to the hardware at the
// next vertical blank, or immediately if the beam is already inside the
// blanking period.
//
// The immediate-commit path is not an optimisation. With the display blanked
// the chip stops counting scanlines and never raises the vertical interrupt,
// so committing during the blanking window is the only way registers can
// ever change again once the display has been turned off.
//
// Multi-register updates are grouped with WriteBegin() and WriteEnd() so
// that dependent registers (horizontal start/end and the matching scale
// factor, for instance) always reach the hardware together:
//
//	v.WriteBegin()
//	v.Write(vi.Origin, vi.OriginSet(addr))
//	v.Write(vi.Width, vi.WidthSet(320))
//	v.WriteEnd()
//
// Read() always returns the shadow value, so a sequence of writes observes
// its own effects even before the hardware has caught up.
//
// The driver is built against two small interfaces, Hardware and
// VBlankWaiter, rather than a memory-mapped register block. The
// hardware/simulator package provides a software implementation suitable for
// testing and for the preview window.
package vi
