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

// Package simulator is a deterministic software model of the VI chip. It
// latches the fourteen hardware registers, advances a half-line counter one
// scanline per Step(), raises the display interrupt when the counter matches
// the armed half-line, and keeps a log of every register poke.
//
// The model is the hardware side of the driver in tests and in the preview
// window. It simulates the register file and the beam position, not the
// pixel pipeline: Rasterize() paints a schematic of the committed
// configuration, good enough to see the active window, blanking and
// interlacing at a glance.
package simulator
