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

package simulator

import (
	"image"
	"image/color"

	"github.com/gophervi/gophervi/hardware/vi"
)

// Rasterize paints a schematic of the committed register configuration, in
// dot by half-line coordinates: sync and borders in black, the active window
// filled with a hue derived from the scanout origin (so buffer flips are
// visible), or left dark when the output is blanked.
func (s *VI) Rasterize() *image.RGBA {
	s.crit.Lock()
	hTotal := s.regs[vi.HTotal]
	vTotal := s.regs[vi.VTotal]
	hVideo := s.regs[vi.HVideo]
	vVideo := s.regs[vi.VVideo]
	ctrl := s.regs[vi.Ctrl]
	origin := s.regs[vi.Origin]
	s.crit.Unlock()

	width := (int(hTotal&0xfff) + 1) / 4
	height := int(vTotal & 0x3ff)
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	x0 := int(hVideo >> 16)
	x1 := int(hVideo & 0xffff)
	y0 := int(vVideo >> 16)
	y1 := int(vVideo & 0xffff)

	blanked := ctrl&vi.CtrlType == vi.CtrlTypeBlank

	fill := color.RGBA{
		R: uint8(origin >> 16),
		G: uint8(origin >> 8),
		B: uint8(origin>>16) ^ 0x80,
		A: 0xff,
	}
	border := color.RGBA{A: 0xff}
	blank := color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := border
			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				if blanked {
					c = blank
				} else {
					c = fill
				}
			}
			img.SetRGBA(x, y, c)
		}
	}

	return img
}
