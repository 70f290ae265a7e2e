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

// Register indexes one of the fourteen 32-bit VI hardware registers. The
// ordering matches the memory layout of the physical register block and must
// never change.
type Register int

// The VI register file.
const (
	// Ctrl is the general control register: pixel type, filters, serrate,
	// pixel-advance. See the Ctrl* constants.
	Ctrl Register = iota

	// Origin is the physical address of the framebuffer currently being
	// scanned out. Changing it is how double/triple buffering is done.
	Origin

	// Width is the framebuffer stride in pixels.
	Width

	// VIntr is the half-line on which the display interrupt is raised.
	// Once a driver has been created the line interrupt dispatch owns this
	// register and re-arms it on every firing; see VI.WriteMasked.
	VIntr

	// VCurrent is the half-line currently being scanned. Read-only. Bit 0
	// carries the field when interlacing is on.
	VCurrent

	// Burst packs the horizontal sync width, colour burst width, vertical
	// sync width and colour burst start.
	Burst

	// VTotal is the total number of half-lines per frame, minus one.
	VTotal

	// HTotal is the duration of a scanline in quarter-dots (minus one),
	// plus the 5-bit leap pattern used by PAL to stay in phase.
	HTotal

	// HTotalLeap holds the two alternate scanline durations used on leap
	// scanlines according to the HTotal leap pattern.
	HTotalLeap

	// HVideo is the horizontal start/end of the active display area, in
	// dots from the start of hsync.
	HVideo

	// VVideo is the vertical start/end of the active display area, in
	// half-lines.
	VVideo

	// VBurst is the start/end of colour burst generation, in half-lines.
	VBurst

	// XScale is the horizontal scale factor (2.10 fixed point, framebuffer
	// pixels consumed per output dot) plus a subpixel offset in the high
	// half-word.
	XScale

	// YScale is the vertical scale factor, same format as XScale.
	YScale

	// NumRegisters is the size of the register file.
	NumRegisters
)

func (r Register) String() string {
	switch r {
	case Ctrl:
		return "CTRL"
	case Origin:
		return "ORIGIN"
	case Width:
		return "WIDTH"
	case VIntr:
		return "V_INTR"
	case VCurrent:
		return "V_CURRENT"
	case Burst:
		return "BURST"
	case VTotal:
		return "V_TOTAL"
	case HTotal:
		return "H_TOTAL"
	case HTotalLeap:
		return "H_TOTAL_LEAP"
	case HVideo:
		return "H_VIDEO"
	case VVideo:
		return "V_VIDEO"
	case VBurst:
		return "V_BURST"
	case XScale:
		return "X_SCALE"
	case YScale:
		return "Y_SCALE"
	}
	return "unknown register"
}

// Ctrl register fields. The bit positions map 1:1 onto silicon and are not
// open to reinterpretation.
const (
	// pixel type. blanking the type stops the video signal entirely
	CtrlType      uint32 = 0x00000003
	CtrlTypeBlank uint32 = 0x00000000
	CtrlType16BPP uint32 = 0x00000002
	CtrlType32BPP uint32 = 0x00000003

	CtrlGammaDitherEnable uint32 = 0x00000004
	CtrlGammaEnable       uint32 = 0x00000008
	CtrlDivotEnable       uint32 = 0x00000010

	// serrate enables interlaced output
	CtrlSerrate uint32 = 0x00000040

	// anti-aliasing / resampling mode
	CtrlAAMode                    uint32 = 0x00000300
	CtrlAAModeResampleFetchAlways uint32 = 0x00000000
	CtrlAAModeResampleFetchNeeded uint32 = 0x00000100
	CtrlAAModeResample            uint32 = 0x00000200
	CtrlAAModeNone                uint32 = 0x00000300

	// undocumented pipeline tuning. one known hardware variant (the iQue
	// player) requires a different value
	CtrlPixelAdvance         uint32 = 0x0000f000
	CtrlPixelAdvanceDefault  uint32 = 0x00003000
	CtrlPixelAdvanceBBPlayer uint32 = 0x00001000

	CtrlDeditherEnable uint32 = 0x00010000
)

// VCurrentVBlank is the half-line (ignoring the field bit) on which the
// vertical blanking period is considered to begin and on which the driver
// asks for its display interrupt.
const VCurrentVBlank = 2

// OriginSet packs a framebuffer physical address for the Origin register.
func OriginSet(address uint32) uint32 {
	return address & 0x00ffffff
}

// WidthSet packs a stride in pixels for the Width register.
func WidthSet(pixels int) uint32 {
	return uint32(pixels) & 0xfff
}

// VIntrSet packs a half-line number for the VIntr register.
func VIntrSet(halfline int) uint32 {
	return uint32(halfline) & 0x3ff
}

// BurstSet packs the four sync/burst widths for the Burst register. start
// and hsyncWidth are in dots, vsyncWidth is in half-lines, burstWidth is in
// dots.
func BurstSet(start int, vsyncWidth int, burstWidth int, hsyncWidth int) uint32 {
	return (uint32(start)&0x3ff)<<20 | (uint32(vsyncWidth)&0xf)<<16 |
		(uint32(burstWidth)&0xff)<<8 | (uint32(hsyncWidth) & 0xff)
}

// VTotalSet packs the total number of half-lines per frame. The hardware
// register holds the value minus one.
func VTotalSet(halflines int) uint32 {
	return uint32(halflines-1) & 0x3ff
}

// HTotalSet packs a scanline duration, given in dots, together with the
// 5-bit leap pattern. The hardware counts in quarter-dots and holds the
// value minus one, which is why the duration can meaningfully carry a
// fractional part.
func HTotalSet(leapPattern uint32, dots float64) uint32 {
	return (leapPattern&0x1f)<<16 | (uint32(dots*4) - 1)
}

// HTotalLeapSet packs the two alternate scanline durations (in dots) used on
// leap scanlines.
func HTotalLeapSet(a float64, b float64) uint32 {
	return ((uint32(a*4)-1)&0xfff)<<16 | ((uint32(b*4) - 1) & 0xfff)
}

// HVideoSet packs the horizontal start/end of the active display area.
func HVideoSet(start int, end int) uint32 {
	return (uint32(start)&0x3ff)<<16 | (uint32(end) & 0x3ff)
}

// VVideoSet packs the vertical start/end of the active display area.
func VVideoSet(start int, end int) uint32 {
	return (uint32(start)&0x3ff)<<16 | (uint32(end) & 0x3ff)
}

// VBurstSet packs the start/end of colour burst generation.
func VBurstSet(start int, end int) uint32 {
	return (uint32(start)&0x3ff)<<16 | (uint32(end) & 0x3ff)
}

// XScaleSet derives the 2.10 fixed-point horizontal scale factor needed to
// resample a framebuffer of fbWidth pixels into outWidth output dots.
// Rounding is half-up. An output of zero dots, as produced by a fully
// out-of-bounds SetOutput request, yields a scale of zero.
func XScaleSet(fbWidth int, outWidth int) uint32 {
	if outWidth < 1 {
		return 0
	}
	return uint32((1024*fbWidth + outWidth/2) / outWidth)
}

// YScaleSet derives the fixed-point vertical scale factor needed to resample
// a framebuffer of fbHeight lines into outHeight output lines. Rounding is
// half-up. An output of zero lines yields a scale of zero.
func YScaleSet(fbHeight int, outHeight int) uint32 {
	if outHeight < 1 {
		return 0
	}
	return uint32((1024*fbHeight + outHeight/2) / outHeight)
}
