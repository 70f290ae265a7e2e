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

package vi_test

import (
	"math"
	"testing"

	"github.com/gophervi/gophervi/hardware/vi"
	"github.com/gophervi/gophervi/test"
)

func TestCalcBorders(t *testing.T) {
	// the virtual output is already 4:3 so a 4:3 request needs no borders
	b := vi.CalcBorders(vi.TVNtsc, 4.0/3.0, 0)
	test.Equate(t, b.Left, 0)
	test.Equate(t, b.Right, 0)
	test.Equate(t, b.Up, 0)
	test.Equate(t, b.Down, 0)

	// widescreen letterboxing
	b = vi.CalcBorders(vi.TVNtsc, 16.0/9.0, 0)
	test.Equate(t, b.Left, 0)
	test.Equate(t, b.Right, 0)
	test.Equate(t, b.Up, 60)
	test.Equate(t, b.Down, 60)

	// PAL's taller virtual output needs thicker letterboxing
	b = vi.CalcBorders(vi.TVPal, 16.0/9.0, 0)
	test.Equate(t, b.Up, 72)
	test.Equate(t, b.Down, 72)

	// overscan margin alone: 5% of 640x480 on each edge
	b = vi.CalcBorders(vi.TVNtsc, 4.0/3.0, vi.CRTMargin)
	test.Equate(t, b.Left, 32)
	test.Equate(t, b.Right, 32)
	test.Equate(t, b.Up, 24)
	test.Equate(t, b.Down, 24)
}

func TestOutputBounds(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)
	x0, y0, x1, y1 := v.OutputBounds()
	test.Equate(t, x0, 96)
	test.Equate(t, y0, 5)
	test.Equate(t, x1, 773)
	test.Equate(t, y1, 525)

	_, v = newDriver(t, vi.TVPal)
	x0, y0, x1, y1 = v.OutputBounds()
	test.Equate(t, x0, 99)
	test.Equate(t, y0, 4)
	test.Equate(t, x1, 794)
	test.Equate(t, y1, 625)
}

func TestSetOutputClamping(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)

	// a request inside the bounds is honoured exactly
	v.SetOutput(108, 35, 748, 515)
	x0, y0, x1, y1 := v.GetOutput()
	test.Equate(t, x0, 108)
	test.Equate(t, y0, 35)
	test.Equate(t, x1, 748)
	test.Equate(t, y1, 515)

	// a request spilling over every bound is cropped to the bounds
	v.SetOutput(90, 3, 800, 530)
	x0, y0, x1, y1 = v.GetOutput()
	test.Equate(t, x0, 96)
	test.Equate(t, y0, 5)
	test.Equate(t, x1, 773)
	test.Equate(t, y1, 525)

	// a request entirely outside the bounds collapses to nothing
	v.SetOutput(800, 600, 900, 700)
	x0, y0, x1, y1 = v.GetOutput()
	test.Equate(t, x0, 0)
	test.Equate(t, y0, 0)
	test.Equate(t, x1, 0)
	test.Equate(t, y1, 0)
}

func TestBordersRoundTrip(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)

	v.SetBorders(vi.Borders{Left: 16, Right: 16, Up: 8, Down: 8})

	b := v.GetBorders()
	test.Equate(t, b.Left, 16)
	test.Equate(t, b.Right, 16)
	test.Equate(t, b.Up, 8)
	test.Equate(t, b.Down, 8)

	x0, y0, x1, y1 := v.GetOutput()
	test.Equate(t, x0, 124)
	test.Equate(t, y0, 43)
	test.Equate(t, x1, 732)
	test.Equate(t, y1, 507)

	test.Equate(t, v.DisplayWidth(), 608)
	test.Equate(t, v.DisplayHeight(), 464)
}

func TestScroll(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)

	v.SetBorders(vi.Borders{Left: 16, Right: 16, Up: 8, Down: 8})

	x, y := v.GetScroll()
	test.Equate(t, x, 124)
	test.Equate(t, y, 43)

	minx, maxx, miny, maxy := v.ScrollBounds()
	test.Equate(t, minx, 96)
	test.Equate(t, maxx, 165)
	test.Equate(t, miny, 5)
	test.Equate(t, maxy, 61)

	// to the top-left corner of the bounds
	v.SetScroll(96, 5)
	x, y = v.GetScroll()
	test.Equate(t, x, 96)
	test.Equate(t, y, 5)

	// past the bounds: clamped, size preserved
	v.SetScroll(0, 0)
	x, y = v.GetScroll()
	test.Equate(t, x, 96)
	test.Equate(t, y, 5)
	test.Equate(t, v.DisplayWidth(), 608)
	test.Equate(t, v.DisplayHeight(), 464)
}

func TestShow(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)

	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})

	test.Equate(t, v.Read(vi.Origin), vi.OriginSet(0x00100000))
	test.Equate(t, v.Read(vi.Width), vi.WidthSet(320))
	test.Equate(t, v.Read(vi.Ctrl)&vi.CtrlType, vi.CtrlType16BPP)

	// a 320x240 framebuffer on the full 640x480 output is a 2:1 upscale
	test.Equate(t, v.Read(vi.XScale)&0xffff, uint32(512))
	test.Equate(t, v.Read(vi.YScale)&0xffff, uint32(1024))

	// nil framebuffer turns the signal off
	v.Show(nil)
	test.Equate(t, v.Read(vi.Ctrl)&vi.CtrlType, vi.CtrlTypeBlank)
	test.Equate(t, v.Read(vi.Origin), uint32(0))
	test.Equate(t, v.Read(vi.Width), uint32(0))
}

func TestShowContractViolations(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)

	// misaligned origin
	test.ExpectedPanic(t, func() {
		v.Show(&vi.Framebuffer{Origin: 0x00100004, Width: 320, Height: 240, BPP: 16})
	})

	// unsupported bit depth
	test.ExpectedPanic(t, func() {
		v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 24})
	})
}

func TestShowWithCollapsedOutput(t *testing.T) {
	_, v := newDriver(t, vi.TVNtsc)

	// a fully out-of-bounds request leaves a zero-size display area.
	// showing a framebuffer on it programs zero scale factors
	v.SetOutput(800, 600, 900, 700)
	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})

	test.Equate(t, v.Read(vi.XScale)&0xffff, uint32(0))
	test.Equate(t, v.Read(vi.YScale)&0xffff, uint32(0))
}

func TestRefreshRate(t *testing.T) {
	rates := map[vi.TVType]float64{
		vi.TVNtsc: 59.8263,
		vi.TVPal:  49.9202,
		vi.TVMpal: 59.8563,
	}

	for tv, want := range rates {
		_, v := newDriver(t, tv)
		if r := v.RefreshRate(); math.Abs(r-want) > 0.01 {
			t.Errorf("%s refresh rate: %.4f, wanted %.4f", tv, r, want)
		}
	}
}

func TestInterlacedFieldOrigin(t *testing.T) {
	sim, v := newDriver(t, vi.TVNtsc)

	v.SetInterlaced(true)
	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})
	sim.ResetPokes()

	// first vblank: odd field, scanout origin nudged one scanline down
	// (320 pixels at 16bpp). the shadow register keeps the base value
	sim.Step()
	sim.Step()
	test.Equate(t, v.Read(vi.Origin), vi.OriginSet(0x00100000))

	// second vblank: even field, origin back to base. one field is 262
	// scanlines once the frame total has lost its half-line
	for i := 0; i < 262; i++ {
		sim.Step()
	}

	origins := pokesFor(sim, vi.Origin)
	test.Equate(t, len(origins), 2)
	test.Equate(t, origins[0], vi.OriginSet(0x00100000+640))
	test.Equate(t, origins[1], vi.OriginSet(0x00100000))
}

func TestInterlacedOriginDuringTransaction(t *testing.T) {
	sim, v := newDriver(t, vi.TVNtsc)

	v.SetInterlaced(true)
	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})

	stepToActiveArea(sim)
	sim.ResetPokes()

	// an open batch must stay invisible to the hardware, including to the
	// per-field origin adjustment performed at each vblank
	v.WriteBegin()
	v.Write(vi.Origin, vi.OriginSet(0x00200000))
	test.Equate(t, sim.PokeCount(), 0)

	stepThroughVBlank(sim)
	stepThroughVBlank(sim)

	// both field adjustments are based on the committed origin, not the
	// one still held back by the batch
	origins := pokesFor(sim, vi.Origin)
	test.Equate(t, len(origins), 2)
	test.Equate(t, origins[0], vi.OriginSet(0x00100000))
	test.Equate(t, origins[1], vi.OriginSet(0x00100000+640))
	test.Equate(t, v.Read(vi.Origin), vi.OriginSet(0x00200000))

	// closing the batch inside vblank commits the new origin
	v.WriteEnd()
	origins = pokesFor(sim, vi.Origin)
	test.Equate(t, len(origins), 3)
	test.Equate(t, origins[2], vi.OriginSet(0x00200000))

	// and the field adjustment follows it from the next vblank on
	stepThroughVBlank(sim)
	origins = pokesFor(sim, vi.Origin)
	test.Equate(t, len(origins), 4)
	test.Equate(t, origins[3], vi.OriginSet(0x00200000))
}

func TestProgressiveFieldOrigin(t *testing.T) {
	sim, v := newDriver(t, vi.TVNtsc)

	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})
	sim.ResetPokes()

	// without serrate the vblank handler leaves the origin alone
	stepThroughVBlank(sim)
	stepThroughVBlank(sim)
	test.Equate(t, len(pokesFor(sim, vi.Origin)), 0)
}

func TestMpalBurstToggle(t *testing.T) {
	sim, v := newDriver(t, vi.TVMpal)

	v.SetInterlaced(true)
	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})
	sim.ResetPokes()

	sim.Step()
	sim.Step()
	for i := 0; i < 262; i++ {
		sim.Step()
	}

	// the colour burst window alternates every field. the shadow register
	// keeps the configured value throughout
	bursts := pokesFor(sim, vi.VBurst)
	test.Equate(t, len(bursts), 2)
	test.Equate(t, bursts[0], vi.VBurstSet(11, 514))
	test.Equate(t, bursts[1], vi.VBurstSet(14, 516))
	test.Equate(t, v.Read(vi.VBurst), vi.VBurstSet(14, 516))
}

func TestMpalBurstDuringTransaction(t *testing.T) {
	sim, v := newDriver(t, vi.TVMpal)

	v.SetInterlaced(true)
	v.Show(&vi.Framebuffer{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16})

	stepToActiveArea(sim)
	sim.ResetPokes()

	// the burst toggle uses the committed window while a batch holding a
	// new one is open
	v.WriteBegin()
	v.Write(vi.VBurst, vi.VBurstSet(20, 500))

	stepThroughVBlank(sim)
	stepThroughVBlank(sim)

	bursts := pokesFor(sim, vi.VBurst)
	test.Equate(t, len(bursts), 2)
	test.Equate(t, bursts[0], vi.VBurstSet(14, 516))
	test.Equate(t, bursts[1], vi.VBurstSet(11, 514))

	v.WriteEnd()
}
