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

package simulator_test

import (
	"testing"

	"github.com/gophervi/gophervi/hardware/simulator"
	"github.com/gophervi/gophervi/hardware/vi"
	"github.com/gophervi/gophervi/test"
)

func TestBeamWrap(t *testing.T) {
	sim := simulator.New()
	sim.Poke(vi.VTotal, vi.VTotalSet(526))

	for i := 0; i < 262; i++ {
		sim.Step()
	}
	line, field := sim.Beam()
	test.Equate(t, line, 262)
	test.Equate(t, field, 0)

	// the 263rd step wraps into the next field. without serrate the field
	// bit stays clear
	sim.Step()
	line, field = sim.Beam()
	test.Equate(t, line, 0)
	test.Equate(t, field, 0)
}

func TestFieldBit(t *testing.T) {
	sim := simulator.New()
	sim.Poke(vi.VTotal, vi.VTotalSet(525))
	sim.Poke(vi.Ctrl, vi.CtrlSerrate)

	sim.StepField()
	_, field := sim.Beam()
	test.Equate(t, field, 1)

	// the field bit is the low bit of the half-line counter
	test.Equate(t, sim.Peek(vi.VCurrent)&1, uint32(1))

	sim.StepField()
	_, field = sim.Beam()
	test.Equate(t, field, 0)
}

func TestInterrupt(t *testing.T) {
	sim := simulator.New()
	sim.Poke(vi.VTotal, vi.VTotalSet(526))

	count := 0
	sim.RegisterHandler(func() { count++ })
	sim.Poke(vi.VIntr, vi.VIntrSet(2))

	// half-line 2 is scanline 1: the first step reaches it
	sim.Step()
	test.Equate(t, count, 1)
	sim.Step()
	test.Equate(t, count, 1)

	// once per field
	sim.StepField()
	sim.Step()
	test.Equate(t, count, 2)
}

func TestTickOnPeek(t *testing.T) {
	sim := simulator.New()
	sim.Poke(vi.VTotal, vi.VTotalSet(526))
	sim.TickOnPeek = true

	test.Equate(t, sim.Peek(vi.VCurrent), uint32(0))
	test.Equate(t, sim.Peek(vi.VCurrent), uint32(2))
	test.Equate(t, sim.Peek(vi.VCurrent), uint32(4))

	// other registers do not move the beam
	_ = sim.Peek(vi.VTotal)
	test.Equate(t, sim.Peek(vi.VCurrent), uint32(6))
}

func TestPokeLog(t *testing.T) {
	sim := simulator.New()

	sim.Poke(vi.Origin, 0x00100000)
	sim.Poke(vi.Width, 320)

	test.Equate(t, sim.PokeCount(), 2)
	pokes := sim.Pokes()
	test.Equate(t, pokes[0].Reg == vi.Origin, true)
	test.Equate(t, pokes[0].Value, uint32(0x00100000))
	test.Equate(t, pokes[1].Reg == vi.Width, true)
	test.Equate(t, pokes[1].Value, uint32(320))

	sim.ResetPokes()
	test.Equate(t, sim.PokeCount(), 0)

	// the register file is unaffected by the log reset
	test.Equate(t, sim.Peek(vi.Origin), uint32(0x00100000))
}

func TestRasterizeGeometry(t *testing.T) {
	sim := simulator.New()
	_, err := vi.NewVI(sim, vi.TVNtsc)
	test.ExpectedSuccess(t, err)

	img := sim.Rasterize()
	test.Equate(t, img.Bounds().Dx(), 773)
	test.Equate(t, img.Bounds().Dy(), 525)
}
