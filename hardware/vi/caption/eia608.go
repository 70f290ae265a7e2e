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

package caption

import (
	"fmt"
	"sync"

	"github.com/gophervi/gophervi/curated"
	"github.com/gophervi/gophervi/hardware/vi"
)

// sentinel errors returned by the caption injector.
const (
	NotNTSC            = "eia608: closed captions require an NTSC signal (have %v)"
	UnsupportedBorders = "eia608: unsupported output window (caption line must abut active video)"
)

// how many half-lines before the caption line the interrupt is requested.
// enough slack to absorb dispatch latency without wasting time spinning.
const irqSafeMargin = 4

const ringSize = 512

// where in the 24-bit scanout address space the line buffer lives.
const lineBufferOrigin = 0x00380000

// Injector emits an EIA-608 caption signal on line 21 of the vertical
// blanking interval. Create with New().
type Injector struct {
	vi *vi.VI
	hw vi.Hardware

	// crit guards the ring buffer and the clear timer, which are shared
	// between caller goroutines and the line interrupt
	crit            sync.Mutex
	ring            [ringSize]uint16
	rpos, wpos      int
	forceClearTimer int

	linebuffer []uint16

	frameCounter int
	irqErrors    int

	parms sigParms
}

// sigParms is the signal configuration derived from the driver state at
// Start() time.
type sigParms struct {
	interlaced bool

	// register substitutions for the caption line
	regCtrl   uint32
	regHVideo uint32
	regXScale uint32

	// half-lines on which the caption signal is emitted
	vLineStart int
	vLineEnd   int

	// the output window as it was before Start() widened it
	outX0, outY0, outX1, outY1 int
}

// New creates a caption injector for a VI driver. The driver must have been
// created for NTSC; EIA-608 does not exist on the other standards.
func New(v *vi.VI, hw vi.Hardware) (*Injector, error) {
	if v.TV() != vi.TVNtsc {
		return nil, curated.Errorf(NotNTSC, v.TV())
	}

	inj := &Injector{
		vi:         v,
		hw:         hw,
		linebuffer: newLineBuffer(),
	}
	return inj, nil
}

// recalcParms derives the signal parameters from the current driver state.
func (inj *Injector) recalcParms() error {
	// from the standard: a data bit lasts 1.986us. an NTSC dot lasts
	// 0.082166us on this hardware. the scale factor stretches our
	// sigwBit*sigwScale pixels across one data bit
	const eiaDataBitUs = 1.986
	const ntscPixelUs = 0.082166
	xscale := float64(sigwBit*sigwScale) / (eiaDataBitUs / ntscPixelUs)
	xscaleFx := uint32(xscale*1024.0 + 0.5)

	ctrl := vi.CtrlPixelAdvanceDefault
	if bb, ok := inj.hw.(vi.BBPlayer); ok && bb.BBPlayer() {
		ctrl = vi.CtrlPixelAdvanceBBPlayer
	}
	ctrl |= vi.CtrlType16BPP
	ctrl |= vi.CtrlAAModeResample
	ctrl |= inj.vi.Read(vi.Ctrl) & vi.CtrlSerrate

	interlaced := ctrl&vi.CtrlSerrate != 0

	// the standard wants the signal on NTSC line 21. NTSC counts lines from
	// the start of the vsync pulse while the chip starts counting after it
	const line21 = 21
	vsyncHeight := int(inj.vi.Read(vi.Burst) >> 16 & 0xf)
	vLine := line21 - vsyncHeight
	vHalfline := vLine*2 + 1
	if !interlaced {
		vHalfline++
	}

	// earliest possible start of active video, and the standard 640-dot
	// output width
	const hStart = 96
	const hEnd = hStart + 640

	// from the standard: the clock lead-in starts 10.5us after hsync. the
	// integer part of the required blank is baked into the line buffer as
	// sigwBlank pixels; the remainder goes into the subpixel offset of the
	// X scale register. the 3-pixel adjustment compensates for a hardware
	// quirk that delays the start of scanout
	const clockTargetUs = 10.5
	clockTarget := clockTargetUs / ntscPixelUs
	blank := (clockTarget-hStart)*xscale - 3
	if blank < sigwBlank {
		panic(fmt.Sprintf("eia608: blank shorter than the line buffer lead blank (%f)", blank))
	}
	xoffset := blank - sigwBlank
	if xoffset < 0 || xoffset >= 3 {
		panic(fmt.Sprintf("eia608: subpixel offset out of range (%f)", xoffset))
	}
	xoffsetFx := uint32(xoffset*1024.0 + 0.5)

	inj.parms = sigParms{
		interlaced: interlaced,
		regCtrl:    ctrl,
		regHVideo:  uint32(hStart)<<16 | uint32(hEnd),
		regXScale:  xoffsetFx<<16 | xscaleFx,
		vLineStart: vHalfline,
	}
	if interlaced {
		inj.parms.vLineEnd = vHalfline + 2
	} else {
		inj.parms.vLineEnd = vHalfline + 1
	}

	inj.parms.outX0, inj.parms.outY0, inj.parms.outX1, inj.parms.outY1 = inj.vi.GetOutput()

	// only the default output window is supported, where active video
	// begins on the line right after the caption signal
	if inj.parms.vLineEnd != inj.parms.outY0 {
		return curated.Errorf(UnsupportedBorders)
	}

	return nil
}

// Start begins emitting the EIA-608 signal, deriving its parameters from the
// current video configuration. Call it only after the video mode has been
// fully configured; bracket any later configuration change with Stop() and
// Start().
//
// TVs can take up to a second to lock onto the caption signal, so Start at
// least a second before the first caption must appear.
func (inj *Injector) Start() error {
	if err := inj.recalcParms(); err != nil {
		return err
	}

	// preload a second of filler so the TV can stabilise before real data
	inj.crit.Lock()
	inj.rpos = 0
	inj.wpos = 0
	for i := 0; i < 30; i++ {
		inj.ring[inj.wpos] = uint16(NOP)
		inj.wpos++
	}
	inj.crit.Unlock()

	inj.vi.WriteBegin()
	defer inj.vi.WriteEnd()

	err := inj.vi.SetLineInterrupt(inj.parms.vLineStart-irqSafeMargin, inj.onLine)
	if err != nil {
		return err
	}

	// widen the output window so the chip is scanning during the caption
	// line rather than idling in blank
	inj.vi.SetOutput(inj.parms.outX0, inj.parms.vLineStart, inj.parms.outX1, inj.parms.outY1)
	return nil
}

// Stop ceases emitting the EIA-608 signal and restores the output window.
func (inj *Injector) Stop() {
	inj.vi.WriteBegin()
	defer inj.vi.WriteEnd()

	inj.vi.SetOutput(inj.parms.outX0, inj.parms.outY0, inj.parms.outX1, inj.parms.outY1)
	inj.vi.SetLineInterrupt(inj.parms.vLineStart-irqSafeMargin, nil)
}

// onLine is the line interrupt handler. It renders the next data word into
// the line buffer and, while the beam crosses the caption line, substitutes
// the scanout configuration with one that displays the line buffer.
func (inj *Injector) onLine() {
	inj.frameCounter++

	// data words go out at 30Hz, every other field. which of the two fields
	// carries the fresh word doesn't matter: the signal is emitted on both
	if inj.frameCounter&1 == 1 {
		data := uint16(NOP)

		inj.crit.Lock()
		forceClear := false
		if inj.forceClearTimer > 0 {
			inj.forceClearTimer--
			forceClear = inj.forceClearTimer < 2
		}
		if forceClear {
			data = uint16(CC1EDM)
		} else if inj.rpos != inj.wpos {
			data = inj.ring[inj.rpos]
			inj.rpos = (inj.rpos + 1) % ringSize
		}
		inj.crit.Unlock()

		inj.renderWord(data)
	}

	// the beam should still be above the caption line. if it isn't the
	// interrupt was dispatched late and the whole frame is skipped: a
	// missing caption word beats a corrupted picture
	if int(inj.hw.Peek(vi.VCurrent)|1) >= (inj.parms.vLineStart|1)-2 {
		inj.irqErrors++
		return
	}

	oldOrigin := inj.hw.Peek(vi.Origin)
	oldCtrl := inj.hw.Peek(vi.Ctrl)
	oldHVideo := inj.hw.Peek(vi.HVideo)
	oldXScale := inj.hw.Peek(vi.XScale)
	oldYScale := inj.hw.Peek(vi.YScale)

	// wait for the hblank right before the caption line
	for int(inj.hw.Peek(vi.VCurrent)|1) < (inj.parms.vLineStart|1)-2 {
	}

	// switch scanout to the line buffer. Width needs no substitution: with
	// a zero Y scale the same line is fetched over and over
	inj.hw.Poke(vi.Origin, lineBufferOrigin)
	inj.hw.Poke(vi.Ctrl, inj.parms.regCtrl)
	inj.hw.Poke(vi.HVideo, inj.parms.regHVideo)
	inj.hw.Poke(vi.XScale, inj.parms.regXScale)
	inj.hw.Poke(vi.YScale, 0)

	// displaying the caption line takes less than 60us; retriggering an
	// interrupt for the restore would cost more than spinning
	for int(inj.hw.Peek(vi.VCurrent)|1) < (inj.parms.vLineEnd | 1) {
	}

	inj.hw.Poke(vi.Origin, oldOrigin)
	inj.hw.Poke(vi.Ctrl, oldCtrl)
	inj.hw.Poke(vi.HVideo, oldHVideo)
	inj.hw.Poke(vi.XScale, oldXScale)
	inj.hw.Poke(vi.YScale, oldYScale)
}

// WriteRaw appends one 16-bit EIA-608 word to the transmit buffer. If
// calcParity is set the odd-parity bits are computed on both bytes;
// otherwise the word goes out as-is, which the receiver will reject unless
// the parity is already correct.
//
// Returns false if the buffer is full, in which case the word is dropped.
func (inj *Injector) WriteRaw(data uint16, calcParity bool) bool {
	inj.crit.Lock()
	defer inj.crit.Unlock()

	next := (inj.wpos + 1) % ringSize
	if next == inj.rpos {
		return false
	}

	if calcParity {
		data = uint16(oddParity(byte(data))) | uint16(oddParity(byte(data>>8)))<<8
	}

	inj.ring[inj.wpos] = data
	inj.wpos = next
	return true
}

// WriteCtrl appends a control word to the transmit buffer. Control words are
// sent twice, as the standard suggests for reliability.
func (inj *Injector) WriteCtrl(ctrl Ctrl) {
	inj.WriteRaw(uint16(ctrl), false)
	inj.WriteRaw(uint16(ctrl), false)
}

// Errors returns the number of frames skipped because the line interrupt
// arrived too late to inject the signal safely.
func (inj *Injector) Errors() int {
	return inj.irqErrors
}

// LineOrigin is the scanout address the injector substitutes while the
// caption line is displayed.
func (inj *Injector) LineOrigin() uint32 {
	return lineBufferOrigin
}

// Line exposes the rendered waveform, one RGBA16 pixel per entry. For
// inspection and preview rendering only.
func (inj *Injector) Line() []uint16 {
	return inj.linebuffer
}

// oddParity returns the 7-bit value with bit 7 set so the byte has an odd
// number of set bits.
func oddParity(value byte) byte {
	v := value
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return value | (v^1)<<7
}
