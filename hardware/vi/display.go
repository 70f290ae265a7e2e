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

package vi

import (
	"fmt"

	"github.com/gophervi/gophervi/logger"
)

// Borders describes how thick, in dots of the virtual display output, the
// black borders around the picture should be on each edge. Borders shrink
// the active display area; negative borders grow it, which most CRTs
// tolerate horizontally but which will upset grabbers and upscalers.
type Borders struct {
	Left, Right, Up, Down int
}

// CRTMargin is a good default overscan margin for CalcBorders when
// displaying on a CRT television: 5% of the picture on every edge.
const CRTMargin = 0.05

// CalcBorders computes the borders needed to obtain a given display aspect
// ratio, with an optional margin (a fraction of the virtual display output)
// to keep the picture clear of CRT overscan. A margin of zero uses the full
// picture, which is what emulators and capture devices want.
//
// This is a pure calculation. Apply the result with SetBorders.
func CalcBorders(tv TVType, aspectRatio float64, overscanMargin float64) Borders {
	w, h := VirtualSize(tv)

	// the virtual output is 4:3 regardless of standard; correction is how
	// much the interior rectangle must be warped to hit the target ratio
	par := float64(w) / float64(h)
	const dar = 4.0 / 3.0
	correction := (aspectRatio / dar) * par

	var b Borders
	b.Left = int(float64(w) * overscanMargin)
	b.Right = b.Left
	b.Up = int(float64(h) * overscanMargin)
	b.Down = b.Up

	width := w - b.Left - b.Right
	height := h - b.Up - b.Down

	if correction > 1 {
		vborders := int(float64(height) - float64(width)/correction + 0.5)
		b.Up += vborders / 2
		b.Down += vborders / 2
	} else {
		hborders := int(float64(width) - float64(height)*correction + 0.5)
		b.Left += hborders / 2
		b.Right += hborders / 2
	}

	return b
}

// OutputBounds returns the rectangle the active display area must stay
// within, in dot/half-line coordinates. Anything outside desyncs the
// television.
//
// The bounds are derived from the sync registers on every call rather than
// cached: the sync registers rarely change after initialisation but
// correctness must not depend on staleness. The left bound is where the
// colour burst ends, the top bound is where vertical sync ends, and the
// right/bottom bounds are the line/frame totals (the half-line counter never
// reaches the literal frame total, hence bottom is total minus one).
func (v *VI) OutputBounds() (x0 int, y0 int, x1 int, y1 int) {
	v.crit.Lock()
	defer v.crit.Unlock()

	burst := v.shadow[Burst]
	x0 = int(burst>>20&0x3ff) + int(burst>>8&0xff)
	y0 = int(burst >> 16 & 0xf)
	x1 = (int(v.shadow[HTotal]&0xfff) + 1) / 4
	y1 = int(v.shadow[VTotal] & 0x3ff)
	return x0, y0, x1, y1
}

// GetOutput returns the current active display area, in dot/half-line
// coordinates.
func (v *VI) GetOutput() (x0 int, y0 int, x1 int, y1 int) {
	v.crit.Lock()
	defer v.crit.Unlock()

	hVideo := v.shadow[HVideo]
	vVideo := v.shadow[VVideo]
	return int(hVideo >> 16), int(vVideo >> 16), int(hVideo & 0xffff), int(vVideo & 0xffff)
}

// SetOutput changes the active display area, clamping the request against
// OutputBounds(). A request entirely outside the bounds collapses to a
// zero-size area (nothing displayed) rather than producing a register
// combination the hardware cannot sync to. A request partially outside is
// cropped on the offending side and compensated on the opposite side, so
// the requested width/height is preserved whenever the bounds allow it.
func (v *VI) SetOutput(x0 int, y0 int, x1 int, y1 int) {
	bx0, by0, bx1, by1 := v.OutputBounds()

	if x0 > bx1 || x1 < bx0 || y0 > by1 || y1 < by0 {
		x0, y0, x1, y1 = 0, 0, 0, 0
	} else {
		if x0 < bx0 {
			x1 += bx0 - x0
			x0 = bx0
		}
		if x1 > bx1 {
			x0 -= x1 - bx1
			x1 = bx1
		}
		if y0 < by0 {
			y1 += by0 - y0
			y0 = by0
		}
		if y1 > by1 {
			y0 -= y1 - by1
			y1 = by1
		}

		// compensation may have pushed the near edge back out of bounds
		// when the request was larger than the bounds themselves
		if x0 < bx0 {
			x0 = bx0
		}
		if y0 < by0 {
			y0 = by0
		}
	}

	v.WriteBegin()
	v.Write(HVideo, HVideoSet(x0, x1))
	v.Write(VVideo, VVideoSet(y0, y1))
	v.WriteEnd()

	logger.Logf("vi", "active area: %d-%d %d-%d", x0, x1, y0, y1)
}

// SetBorders changes the active display area to the preset default shrunk
// by the given borders. The same clamping as SetOutput applies.
//
// Borders translate and crop the picture; they do not rescale it. Call
// SetXScale/SetYScale afterwards to refit the framebuffer.
func (v *VI) SetBorders(b Borders) {
	hVideo := v.preset.Regs[HVideo]
	vVideo := v.preset.Regs[VVideo]

	x0 := int(hVideo>>16) + b.Left
	x1 := int(hVideo&0xffff) - b.Right
	y0 := int(vVideo>>16) + b.Up
	y1 := int(vVideo&0xffff) - b.Down

	v.SetOutput(x0, y0, x1, y1)
}

// GetBorders returns the currently configured borders, relative to the
// preset default display area.
func (v *VI) GetBorders() Borders {
	hVideo := v.preset.Regs[HVideo]
	vVideo := v.preset.Regs[VVideo]

	return Borders{
		Left:  int(v.Read(HVideo)>>16) - int(hVideo>>16),
		Right: int(hVideo&0xffff) - int(v.Read(HVideo)&0xffff),
		Up:    int(v.Read(VVideo)>>16) - int(vVideo>>16),
		Down:  int(vVideo&0xffff) - int(v.Read(VVideo)&0xffff),
	}
}

// DisplayWidth returns the number of horizontal dots actually displayed:
// 640 minus any configured borders.
func (v *VI) DisplayWidth() int {
	hVideo := v.Read(HVideo)
	return int(hVideo&0xffff) - int(hVideo>>16)
}

// DisplayHeight returns the number of vertical half-lines actually
// displayed: 480 (or 576 on PAL) minus any configured borders.
func (v *VI) DisplayHeight() int {
	vVideo := v.Read(VVideo)
	return int(vVideo&0xffff) - int(vVideo>>16)
}

// SetOrigin configures the framebuffer: its physical address, its stride in
// pixels and its bit depth (16 or 32).
//
// A misaligned origin or an unsupported bit depth is a programming error and
// panics: the scanout DMA requires 8-byte alignment and silently wraps
// otherwise.
//
// The chip never knows the framebuffer's width and height; it displays
// whatever falls inside the active display area. Use SetXScale/SetYScale to
// make the framebuffer fit it.
func (v *VI) SetOrigin(origin uint32, stridePixels int, bpp int) {
	if origin%8 != 0 {
		panic(fmt.Sprintf("vi: framebuffer origin not 8-byte aligned (%08x)", origin))
	}
	if bpp != 16 && bpp != 32 {
		panic(fmt.Sprintf("vi: invalid framebuffer bit depth (%d, must be 16 or 32)", bpp))
	}

	pixelType := CtrlType16BPP
	if bpp == 32 {
		pixelType = CtrlType32BPP
	}

	v.WriteBegin()
	v.Write(Origin, OriginSet(origin))
	v.Write(Width, WidthSet(stridePixels))
	v.WriteMasked(Ctrl, CtrlType, pixelType)
	v.WriteEnd()
}

// SetXScale configures the horizontal scale factor so that a framebuffer of
// the given width fits the active display area exactly.
func (v *VI) SetXScale(fbWidth int) {
	v.WriteMasked(XScale, 0xffff, XScaleSet(fbWidth, v.DisplayWidth()))
}

// SetYScale configures the vertical scale factor so that a framebuffer of
// the given height fits the active display area exactly. The display height
// is halved because the scale is applied per field.
func (v *VI) SetYScale(fbHeight int) {
	v.WriteMasked(YScale, 0xffff, YScaleSet(fbHeight, v.DisplayHeight()/2))
}

// Framebuffer describes a buffer in memory for Show(). The driver is a
// control plane: it never touches the pixels, it only tells the hardware
// where they are.
type Framebuffer struct {
	// physical address of the first pixel. must be 8-byte aligned
	Origin uint32

	// size in pixels. Width is also the stride: the scanout hardware has
	// no separate stride register
	Width  int
	Height int

	// bits per pixel: 16 or 32
	BPP int
}

// Show displays the framebuffer at the next safe point: origin, stride,
// pixel type and both scale factors change together.
//
// A nil framebuffer turns the video signal off altogether. Note that
// WaitVBlank must not be called while the signal is off.
func (v *VI) Show(fb *Framebuffer) {
	if fb == nil {
		v.WriteBegin()
		v.Write(Origin, 0)
		v.Write(Width, 0)
		v.WriteMasked(Ctrl, CtrlType, CtrlTypeBlank)
		v.WriteEnd()
		return
	}

	v.WriteBegin()
	v.SetOrigin(fb.Origin, fb.Width, fb.BPP)
	v.SetXScale(fb.Width)
	v.SetYScale(fb.Height)
	v.WriteEnd()
}

// SetInterlaced switches between progressive and interlaced output. In
// interlaced mode the frame total loses a half-line so that the two fields
// of each frame land on alternating scanlines; the vblank handler takes
// care of the per-field origin adjustment.
func (v *VI) SetInterlaced(interlaced bool) {
	serrate := uint32(0)
	vTotalLow := uint32(1)
	if interlaced {
		serrate = CtrlSerrate
		vTotalLow = 0
	}

	v.WriteBegin()
	v.WriteMasked(Ctrl, CtrlSerrate, serrate)
	v.WriteMasked(VTotal, 0x1, vTotalLow)
	v.WriteEnd()
}

// GetScroll returns the position of the top-left corner of the active
// display area, in dot/half-line coordinates.
func (v *VI) GetScroll() (int, int) {
	x0, y0, _, _ := v.GetOutput()
	return x0, y0
}

// ScrollBounds returns the valid range for the scroll position. Positions
// outside this range would push the active area outside OutputBounds.
func (v *VI) ScrollBounds() (minx int, maxx int, miny int, maxy int) {
	width := v.DisplayWidth()
	height := v.DisplayHeight()
	bx0, by0, bx1, by1 := v.OutputBounds()
	return bx0, bx1 - width, by0, by1 - height
}

// SetScroll moves the active display area so that its top-left corner is at
// the given position, clamped to ScrollBounds.
func (v *VI) SetScroll(x int, y int) {
	curx, cury := v.GetScroll()
	v.Scroll(x-curx, y-cury)
}

// Scroll moves the active display area by the given amount, clamped to
// ScrollBounds.
func (v *VI) Scroll(deltax int, deltay int) {
	v.WriteBegin()
	b := v.GetBorders()
	b.Left += deltax
	b.Right -= deltax
	b.Up += deltay
	b.Down -= deltay
	v.SetBorders(b)
	v.WriteEnd()
}

// RefreshRate returns the hardware-accurate refresh rate of the video
// output in Hz: close to, but not exactly, 50 on PAL and 60 on NTSC/M-PAL.
// Non-standard sync configurations (PAL60 and friends) are accounted for.
func (v *VI) RefreshRate() float64 {
	hTotal := v.Read(HTotal)
	vTotal := v.Read(VTotal)
	leap := v.Read(HTotalLeap)

	hDuration := int(hTotal&0xfff) + 1
	vHalflines := int(vTotal&0x3ff) + 1
	leapA := int(leap >> 16 & 0xfff)
	leapB := int(leap & 0xfff)

	// the 5-bit pattern selects duration a or b for the leap scanline of
	// successive frames
	leapBits := 0
	for mask := uint32(1 << 16); mask < 1<<21; mask <<= 1 {
		if hTotal&mask != 0 {
			leapBits++
		}
	}
	leapAvg := (leapA*leapBits + leapB*(5-leapBits)) / 5

	return float64(v.preset.Clock) / float64(hDuration*(vHalflines-2)/2+leapAvg)
}
