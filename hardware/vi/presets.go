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

// TVType is the broadcast standard of the attached television, as detected
// by the boot process from the region of the hardware.
type TVType int

// The three supported broadcast standards. The values match the region codes
// returned by the hardware detection.
const (
	TVPal TVType = iota
	TVNtsc
	TVMpal
)

// TVTypeList is the list of TVType values the driver may adopt.
var TVTypeList = []string{"PAL", "NTSC", "M-PAL"}

func (tv TVType) String() string {
	if tv < TVPal || tv > TVMpal {
		return "unknown"
	}
	return TVTypeList[tv]
}

// Preset is the fixed set of sync/timing register values for one broadcast
// standard, along with the default active display area for that standard. A
// preset is chosen once when the driver is created and never mutated.
type Preset struct {
	TV         TVType
	Interlaced bool

	// the register file as it should be programmed for this standard, with
	// a zeroed framebuffer configuration
	Regs [NumRegisters]uint32

	// the pixel clock for this standard, in Hz. used for refresh rate
	// calculations
	Clock int
}

// the virtual display output is always 640 dots wide. vertically it is 480
// lines on NTSC and M-PAL and 576 on PAL; the dots are not square on PAL so
// the aspect ratio of the full output is 4:3 on every standard.
const (
	VirtualWidth     = 640
	VirtualHeightPal = 576
	VirtualHeight    = 480
)

// VirtualSize returns the virtual display output size for a TV type.
func VirtualSize(tv TVType) (int, int) {
	if tv == TVPal {
		return VirtualWidth, VirtualHeightPal
	}
	return VirtualWidth, VirtualHeight
}

// presets indexed by interlaced (0 or 1) and TVType.
//
// the values are the final revision of the timing tables. earlier revisions
// with slightly different M-PAL line durations are superseded.
var presets [2][3]Preset

// PresetFor returns the timing preset for a TV type. The same preset is used
// for progressive and interlaced output; the driver adjusts VTotal and the
// serrate bit when interlacing is switched.
func PresetFor(tv TVType, interlaced bool) *Preset {
	i := 0
	if interlaced {
		i = 1
	}
	return &presets[i][tv]
}

// colour burst defaults per standard. burst start and hsync width are in
// dots, vsync width is in half-lines, burst width is in dots.
const (
	burstStartNtsc = 62
	vsyncWidthNtsc = 5
	burstWidthNtsc = 34
	hsyncWidthNtsc = 57

	burstStartPal = 64
	vsyncWidthPal = 4
	burstWidthPal = 35
	hsyncWidthPal = 58

	burstStartMpal = 70
	vsyncWidthMpal = 5
	burstWidthMpal = 30
	hsyncWidthMpal = 57
)

// pixel clocks per standard, in Hz.
const (
	clockPal  = 49656530
	clockNtsc = 48681818
	clockMpal = 48628322
)

func init() {
	ntscBurst := BurstSet(burstStartNtsc, vsyncWidthNtsc, burstWidthNtsc, hsyncWidthNtsc)
	palBurst := BurstSet(burstStartPal, vsyncWidthPal, burstWidthPal, hsyncWidthPal)
	mpalBurst := BurstSet(burstStartMpal, vsyncWidthMpal, burstWidthMpal, hsyncWidthMpal)

	presets[0][TVNtsc] = Preset{
		TV:    TVNtsc,
		Clock: clockNtsc,
		Regs: [NumRegisters]uint32{
			0,
			OriginSet(0),
			WidthSet(0),
			VIntrSet(2),
			0,
			ntscBurst,
			VTotalSet(526),
			HTotalSet(0b00000, 773.5),
			HTotalLeapSet(773.5, 773.5),
			HVideoSet(108, 748),
			VVideoSet(35, 515),
			VBurstSet(14, 516),
			XScaleSet(0, 640),
			YScaleSet(0, 240),
		},
	}

	presets[0][TVPal] = Preset{
		TV:    TVPal,
		Clock: clockPal,
		Regs: [NumRegisters]uint32{
			0,
			OriginSet(0),
			WidthSet(0),
			VIntrSet(2),
			0,
			palBurst,
			VTotalSet(626),
			HTotalSet(0b10101, 794.5),
			HTotalLeapSet(796, 795.75),
			HVideoSet(128, 768),
			VVideoSet(45, 621),
			VBurstSet(9, 619),
			XScaleSet(0, 640),
			YScaleSet(0, 288),
		},
	}

	presets[0][TVMpal] = Preset{
		TV:    TVMpal,
		Clock: clockMpal,
		Regs: [NumRegisters]uint32{
			0,
			OriginSet(0),
			WidthSet(0),
			VIntrSet(2),
			0,
			mpalBurst,
			VTotalSet(526),
			HTotalSet(0b00000, 772.25),
			HTotalLeapSet(775.25, 775.25),
			HVideoSet(108, 748),
			VVideoSet(37, 511),
			VBurstSet(14, 516),
			XScaleSet(0, 640),
			YScaleSet(0, 240),
		},
	}

	// the interlaced variants drop one half-line from the frame total so
	// that fields alternate, and adjust the vertical active/burst areas
	// where the standard requires it
	presets[1][TVNtsc] = presets[0][TVNtsc]
	presets[1][TVNtsc].Interlaced = true
	presets[1][TVNtsc].Regs[VTotal] = VTotalSet(525)

	presets[1][TVPal] = presets[0][TVPal]
	presets[1][TVPal].Interlaced = true
	presets[1][TVPal].Regs[VTotal] = VTotalSet(625)

	presets[1][TVMpal] = presets[0][TVMpal]
	presets[1][TVMpal].Interlaced = true
	presets[1][TVMpal].Regs[VTotal] = VTotalSet(525)
	presets[1][TVMpal].Regs[VVideo] = VVideoSet(35, 509)
	presets[1][TVMpal].Regs[VBurst] = VBurstSet(11, 514)
}
