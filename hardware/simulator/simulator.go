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
	"sync"

	"github.com/gophervi/gophervi/hardware/vi"
)

// Poke is one entry of the poke log: a register write that reached the
// simulated hardware.
type Poke struct {
	Reg   vi.Register
	Value uint32
}

// VI simulates the Video Interface chip. Create with New().
//
// The counter is advanced explicitly with Step/StepField/StepFrame. When
// TickOnPeek is set, reading V_CURRENT also advances the counter by one
// scanline; this makes the driver's busy-wait loops progress in tests, where
// nothing else would move the beam. TickOnPeek advances the counter only: the
// display interrupt fires from the Step functions, never from inside a peek.
type VI struct {
	crit sync.Mutex

	regs    [vi.NumRegisters]uint32
	handler func()

	// beam position: scanline within the current field, and the field bit
	line  int
	field int

	// fields completed since creation
	fields int

	pokes []Poke

	// advance the counter by one scanline on every V_CURRENT peek
	TickOnPeek bool

	// report the hardware variant that needs the alternative pixel advance
	IsBBPlayer bool
}

// New creates a simulated VI chip, registers zeroed, beam at the top.
func New() *VI {
	return &VI{}
}

// Poke writes a hardware register directly and records it in the poke log.
func (s *VI) Poke(reg vi.Register, value uint32) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.regs[reg] = value
	s.pokes = append(s.pokes, Poke{Reg: reg, Value: value})
}

// Peek reads a hardware register directly. V_CURRENT reads the beam
// position, and advances it by one scanline when TickOnPeek is set.
func (s *VI) Peek(reg vi.Register) uint32 {
	s.crit.Lock()
	defer s.crit.Unlock()

	if reg == vi.VCurrent {
		cur := uint32(s.line<<1 | s.field)
		if s.TickOnPeek {
			s.advance()
		}
		return cur
	}

	return s.regs[reg]
}

// RegisterHandler installs the display interrupt handler.
func (s *VI) RegisterHandler(handler func()) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.handler = handler
}

// BBPlayer reports whether the simulated chip is the variant needing the
// alternative pixel advance.
func (s *VI) BBPlayer() bool {
	return s.IsBBPlayer
}

// advance moves the beam one scanline, wrapping into the next field at the
// bottom. crit must be held.
func (s *VI) advance() {
	s.line++

	linesPerField := (int(s.regs[vi.VTotal]&0x3ff) + 1) / 2
	if linesPerField < 1 {
		linesPerField = 1
	}

	if s.line >= linesPerField {
		s.line = 0
		s.fields++
		if s.regs[vi.Ctrl]&vi.CtrlSerrate != 0 {
			s.field ^= 1
		} else {
			s.field = 0
		}
	}
}

// Step advances the beam one scanline and fires the display interrupt if the
// new position matches the armed half-line. The field bit does not take part
// in the match, as on the real chip: the interrupt fires once per field.
func (s *VI) Step() {
	s.crit.Lock()
	s.advance()
	cur := uint32(s.line << 1)
	fire := s.handler != nil && cur == s.regs[vi.VIntr]&^1
	handler := s.handler
	s.crit.Unlock()

	if fire {
		handler()
	}
}

// StepField advances the beam to the top of the next field.
func (s *VI) StepField() {
	s.crit.Lock()
	target := s.fields + 1
	s.crit.Unlock()

	for {
		s.Step()
		s.crit.Lock()
		done := s.fields >= target
		s.crit.Unlock()
		if done {
			return
		}
	}
}

// StepFrame advances the beam a whole frame: two fields when interlacing is
// on, one otherwise.
func (s *VI) StepFrame() {
	s.StepField()
	if s.Peek(vi.Ctrl)&vi.CtrlSerrate != 0 {
		s.StepField()
	}
}

// Beam returns the beam position: the scanline within the field and the
// field bit.
func (s *VI) Beam() (line int, field int) {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.line, s.field
}

// Pokes returns a copy of the poke log.
func (s *VI) Pokes() []Poke {
	s.crit.Lock()
	defer s.crit.Unlock()
	p := make([]Poke, len(s.pokes))
	copy(p, s.pokes)
	return p
}

// PokeCount returns the number of register writes that have reached the
// hardware.
func (s *VI) PokeCount() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return len(s.pokes)
}

// ResetPokes empties the poke log.
func (s *VI) ResetPokes() {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.pokes = s.pokes[:0]
}
