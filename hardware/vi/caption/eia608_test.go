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
	"testing"

	"github.com/gophervi/gophervi/curated"
	"github.com/gophervi/gophervi/hardware/simulator"
	"github.com/gophervi/gophervi/hardware/vi"
	"github.com/gophervi/gophervi/test"
)

func TestOddParity(t *testing.T) {
	test.Equate(t, int(oddParity(0x00)), 0x80)
	test.Equate(t, int(oddParity(0x20)), 0x20)
	test.Equate(t, int(oddParity(0x44)), 0xc4)
	test.Equate(t, int(oddParity(0x14)), 0x94)
	test.Equate(t, int(oddParity(0x7f)), 0x7f)
}

func TestCtrlWords(t *testing.T) {
	test.Equate(t, uint16(NOP), 0x8080)
	test.Equate(t, uint16(CC1RCL), 0x9420)
	test.Equate(t, uint16(CC1EDM), 0x942c)
	test.Equate(t, uint16(CC1TS), 0x91b9)
	test.Equate(t, uint16(CC2RCL), 0x1c20)
	test.Equate(t, uint16(CC2TS), 0x19b9)
}

func TestWriteRaw(t *testing.T) {
	inj := &Injector{}

	test.ExpectedSuccess(t, inj.WriteRaw(0x0044, true))
	test.Equate(t, inj.ring[0], 0x80c4)

	// without parity calculation the word goes out untouched
	test.ExpectedSuccess(t, inj.WriteRaw(0x0044, false))
	test.Equate(t, inj.ring[1], 0x0044)
}

func TestWriteRawCapacity(t *testing.T) {
	inj := &Injector{}

	// one slot is sacrificed to distinguish full from empty
	for i := 0; i < ringSize-1; i++ {
		test.ExpectedSuccess(t, inj.WriteRaw(uint16(i), false))
	}
	test.ExpectedFailure(t, inj.WriteRaw(0xffff, false))

	// draining one slot makes room again
	inj.rpos = (inj.rpos + 1) % ringSize
	test.ExpectedSuccess(t, inj.WriteRaw(0xffff, false))
}

func TestPrepare(t *testing.T) {
	inj := &Injector{}
	inj.Prepare(CC1, "HELLO WORLD", nil)

	// resume caption loading, then the preamble address code for row 11
	// indent 8, then two transparent spaces to finish the centering, then
	// the text packed in pairs. control words are doubled; the trailing
	// lone character is padded with a parity-only null
	want := []uint16{
		0x9420, 0x9420, // RCL
		0x1054, 0x1054, // PAC: row 11, indent 8
		0x91b9, 0x91b9, // transparent spaces
		0xc845,         // HE
		0x4c4c,         // LL
		0x4f20,         // O
		0x574f,         // WO
		0x524c,         // RL
		0xc480,         // D
	}

	test.Equate(t, inj.wpos, len(want))
	for i, w := range want {
		if inj.ring[i] != w {
			t.Errorf("word %d: %04x, wanted %04x", i, inj.ring[i], w)
		}
	}
}

func TestPrepareCC2(t *testing.T) {
	inj := &Injector{}
	inj.Prepare(CC2, "HELLO WORLD", nil)

	test.Equate(t, inj.ring[0], uint16(CC2RCL))
	test.Equate(t, inj.ring[1], uint16(CC2RCL))
	test.Equate(t, inj.ring[4], uint16(CC2TS))
	test.Equate(t, inj.ring[5], uint16(CC2TS))
}

// decodeRows recovers the caption rows from a word sequence: doubled control
// words are collapsed, preamble address codes start a new row, transparent
// spaces and padding are dropped.
func decodeRows(words []uint16) []string {
	var rows []string
	var cur []byte
	last := uint16(0xffff)

	for _, w := range words {
		hi := byte(w>>8) & 0x7f
		lo := byte(w) & 0x7f

		if hi < 0x20 {
			if w == last {
				last = 0xffff
				continue
			}
			last = w
			if lo >= 0x40 {
				if cur != nil {
					rows = append(rows, string(cur))
				}
				cur = []byte{}
			}
			continue
		}

		last = 0xffff
		if hi >= 0x20 {
			cur = append(cur, hi)
		}
		if lo >= 0x20 {
			cur = append(cur, lo)
		}
	}

	if cur != nil {
		rows = append(rows, string(cur))
	}
	return rows
}

func TestPrepareWordWrap(t *testing.T) {
	inj := &Injector{}
	inj.Prepare(CC1, "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG", nil)

	rows := decodeRows(inj.ring[:inj.wpos])
	test.Equate(t, len(rows), 2)
	test.Equate(t, rows[0], "THE QUICK BROWN FOX JUMPS OVER")
	test.Equate(t, rows[1], "THE LAZY DOG")
}

func TestPrepareNewline(t *testing.T) {
	inj := &Injector{}
	inj.Prepare(CC1, "AB\nCD", nil)

	rows := decodeRows(inj.ring[:inj.wpos])
	test.Equate(t, len(rows), 2)
	test.Equate(t, rows[0], "AB")
	test.Equate(t, rows[1], "CD")
}

func TestPrepareContractViolations(t *testing.T) {
	inj := &Injector{}

	test.ExpectedPanic(t, func() {
		inj.Prepare(Channel(3), "HELLO", nil)
	})
	test.ExpectedPanic(t, func() {
		inj.Prepare(CC1, "HELLO", &Parms{Row: 16})
	})
}

func TestShowQueuesEndOfCaption(t *testing.T) {
	inj := &Injector{}
	inj.Show(CC1, 1.0)

	test.Equate(t, inj.ring[0], uint16(CC1EOC))
	test.Equate(t, inj.ring[1], uint16(CC1EOC))
	test.Equate(t, inj.forceClearTimer, 30)
}

func TestLineBuffer(t *testing.T) {
	inj := &Injector{linebuffer: newLineBuffer()}

	test.Equate(t, len(inj.linebuffer), sigwLen)

	// leading blank, then the clock lead-in starts with a mark
	for i := 0; i < sigwBlank; i++ {
		test.Equate(t, inj.linebuffer[i], sigOff)
	}
	test.Equate(t, inj.linebuffer[sigwBlank], sigOn)

	// a NOP byteswaps to itself: 7 zero bits, a one, 7 zero bits, a one
	inj.renderWord(uint16(NOP))

	const dataStart = sigwBlank + sigwLeadin*sigwScale
	const bitw = sigwBit * sigwScale
	test.Equate(t, inj.linebuffer[dataStart], sigOff)
	test.Equate(t, inj.linebuffer[dataStart+7*bitw], sigOn)
	test.Equate(t, inj.linebuffer[dataStart+8*bitw], sigOff)
	test.Equate(t, inj.linebuffer[dataStart+15*bitw], sigOn)

	// trailing blank
	for i := dataStart + 16*bitw; i < sigwLen; i++ {
		test.Equate(t, inj.linebuffer[i], sigOff)
	}
}

func TestNotNTSC(t *testing.T) {
	sim := simulator.New()
	v, err := vi.NewVI(sim, vi.TVPal)
	test.ExpectedSuccess(t, err)

	_, err = New(v, sim)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, NotNTSC))
}

func TestRecalcParms(t *testing.T) {
	sim := simulator.New()
	v, err := vi.NewVI(sim, vi.TVNtsc)
	test.ExpectedSuccess(t, err)

	inj, err := New(v, sim)
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, inj.recalcParms())

	// NTSC line 21 lands on half-line 34 of a progressive signal, right
	// above the default active area
	test.Equate(t, inj.parms.vLineStart, 34)
	test.Equate(t, inj.parms.vLineEnd, 35)
	test.Equate(t, inj.parms.outY0, 35)
	test.Equate(t, inj.parms.interlaced, false)

	// the substituted scanout is 16bpp with resampling, no custom borders
	test.Equate(t, inj.parms.regCtrl&vi.CtrlType, vi.CtrlType16BPP)
	test.Equate(t, inj.parms.regCtrl&vi.CtrlAAMode, vi.CtrlAAModeResample)
	test.Equate(t, inj.parms.regHVideo, uint32(96<<16|736))
}

func TestStartUnsupportedBorders(t *testing.T) {
	sim := simulator.New()
	v, err := vi.NewVI(sim, vi.TVNtsc)
	test.ExpectedSuccess(t, err)

	inj, err := New(v, sim)
	test.ExpectedSuccess(t, err)

	// a top border pushes active video away from the caption line
	v.SetBorders(vi.Borders{Up: 8})

	err = inj.Start()
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, UnsupportedBorders))
}

func TestLateDispatchSkipsFrame(t *testing.T) {
	sim := simulator.New()
	v, err := vi.NewVI(sim, vi.TVNtsc)
	test.ExpectedSuccess(t, err)

	inj, err := New(v, sim)
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, inj.recalcParms())

	// the beam is already well past the point where the substitution could
	// complete before the caption line starts
	for i := 0; i < 20; i++ {
		sim.Step()
	}
	sim.ResetPokes()

	inj.onLine()

	// the frame is skipped outright: no register substitution at all
	test.Equate(t, sim.PokeCount(), 0)
	test.Equate(t, inj.Errors(), 1)
}

func TestInjectionSequence(t *testing.T) {
	sim := simulator.New()
	v, err := vi.NewVI(sim, vi.TVNtsc)
	test.ExpectedSuccess(t, err)

	inj, err := New(v, sim)
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, inj.recalcParms())

	for i := 0; i < 10; i++ {
		sim.Step()
	}

	oldOrigin := sim.Peek(vi.Origin)
	oldCtrl := sim.Peek(vi.Ctrl)
	oldYScale := sim.Peek(vi.YScale)

	// an even frame counter skips the data word; the counter peeks move
	// the beam so the busy-waits terminate
	inj.frameCounter = 1
	sim.TickOnPeek = true
	sim.ResetPokes()

	inj.onLine()
	test.Equate(t, inj.Errors(), 0)

	// substitution of the five scanout registers, then their restoration
	pokes := sim.Pokes()
	test.Equate(t, len(pokes), 10)

	test.Equate(t, pokes[0].Reg == vi.Origin, true)
	test.Equate(t, pokes[0].Value, uint32(lineBufferOrigin))
	test.Equate(t, pokes[1].Reg == vi.Ctrl, true)
	test.Equate(t, pokes[1].Value, inj.parms.regCtrl)
	test.Equate(t, pokes[2].Reg == vi.HVideo, true)
	test.Equate(t, pokes[2].Value, inj.parms.regHVideo)
	test.Equate(t, pokes[3].Reg == vi.XScale, true)
	test.Equate(t, pokes[3].Value, inj.parms.regXScale)
	test.Equate(t, pokes[4].Reg == vi.YScale, true)
	test.Equate(t, pokes[4].Value, uint32(0))

	test.Equate(t, pokes[5].Reg == vi.Origin, true)
	test.Equate(t, pokes[5].Value, oldOrigin)
	test.Equate(t, pokes[6].Reg == vi.Ctrl, true)
	test.Equate(t, pokes[6].Value, oldCtrl)
	test.Equate(t, pokes[9].Reg == vi.YScale, true)
	test.Equate(t, pokes[9].Value, oldYScale)
}

func TestForceClear(t *testing.T) {
	sim := simulator.New()
	inj := &Injector{hw: sim, linebuffer: newLineBuffer()}
	inj.parms = sigParms{vLineStart: 34, vLineEnd: 35}

	// beam past the caption line so every call takes the skip path after
	// the data word has been chosen
	sim.Poke(vi.VTotal, vi.VTotalSet(525))
	for i := 0; i < 20; i++ {
		sim.Step()
	}

	test.ExpectedSuccess(t, inj.WriteRaw(0x1234, false))
	inj.forceClearTimer = 2

	// odd fields carry data. the last two timer ticks transmit the erase
	// command instead of draining the buffer
	inj.onLine()
	test.Equate(t, inj.forceClearTimer, 1)
	test.Equate(t, inj.rpos, 0)

	inj.onLine() // even: no data word
	test.Equate(t, inj.forceClearTimer, 1)

	inj.onLine()
	test.Equate(t, inj.forceClearTimer, 0)
	test.Equate(t, inj.rpos, 0)

	// timer exhausted: buffered words flow again
	inj.onLine() // even
	inj.onLine()
	test.Equate(t, inj.rpos, 1)
}

func TestStartStop(t *testing.T) {
	sim := simulator.New()
	sim.TickOnPeek = true

	v, err := vi.NewVI(sim, vi.TVNtsc)
	test.ExpectedSuccess(t, err)

	inj, err := New(v, sim)
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, inj.Start())

	// the output window was widened up to the caption line
	_, y0, _, _ := v.GetOutput()
	test.Equate(t, y0, 34)

	inj.Prepare(CC1, "HELLO", nil)
	inj.Show(CC1, 1.0)

	for i := 0; i < 8; i++ {
		sim.StepFrame()
	}

	test.Equate(t, inj.Errors(), 0)

	// the caption line was injected: the scanout origin was pointed at the
	// line buffer at least once
	found := false
	for _, p := range sim.Pokes() {
		if p.Reg == vi.Origin && p.Value == uint32(lineBufferOrigin) {
			found = true
		}
	}
	test.Equate(t, found, true)

	// the preloaded filler is being drained
	test.Equate(t, inj.rpos > 0, true)

	// stopping restores the original output window
	inj.Stop()
	_, y0, _, _ = v.GetOutput()
	test.Equate(t, y0, 35)
}
