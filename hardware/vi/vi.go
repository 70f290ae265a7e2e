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
	"strings"
	"sync"

	"github.com/gophervi/gophervi/curated"
	"github.com/gophervi/gophervi/logger"
)

// Hardware is the access the driver has to the VI chip. On real silicon this
// is the memory-mapped register block plus the interrupt controller; the
// hardware/simulator package provides a software implementation.
//
// Poke and Peek act on the physical registers directly, with none of the
// shadowing or deferral the driver itself provides. Outside of the driver
// and the caption injector nothing should need them.
type Hardware interface {
	Poke(reg Register, value uint32)
	Peek(reg Register) uint32

	// RegisterHandler installs the function to be called whenever the
	// half-line counter reaches the value in the VIntr register
	RegisterHandler(handler func())
}

// VBlankWaiter is implemented by Hardware instances that live alongside a
// cooperative scheduler and can suspend the caller until the next vertical
// blank. When absent the driver falls back to polling the half-line counter.
type VBlankWaiter interface {
	WaitVBlank()
}

// BBPlayer is implemented by Hardware instances representing the hardware
// variant that needs the alternative pixel-advance value.
type BBPlayer interface {
	BBPlayer() bool
}

// sentinel errors returned by the VI driver.
const (
	UnsupportedTVType  = "vi: unsupported tv type (%v)"
	LineInterruptsFull = "vi: line interrupt table full (%d entries)"
)

// VI is the driver for the Video Interface chip. Create with NewVI().
//
// All configuration flows through the Write* functions into a shadow copy of
// the register file and reaches the hardware at the next safe point. The
// higher-level functions (Show, SetBorders, etc.) are conveniences layered
// on the same path.
type VI struct {
	hw Hardware
	tv TVType

	// the timing preset the driver was initialised with. never mutated
	preset *Preset

	// crit guards everything below. it stands in for the interrupt-disable
	// window used on real hardware: held only for a handful of operations
	// at a time so that interrupt latency stays low
	crit sync.Mutex

	// the shadow register file: the intended state of the hardware,
	// regardless of whether the hardware holds it yet
	shadow [NumRegisters]uint32

	// one bit per register: shadow value not yet committed to hardware
	pending uint32

	// the register values last committed by flush(). the interlaced field
	// upkeep derives its per-field pokes from these, never from the
	// shadow: while a batch is open the shadow runs ahead of the hardware
	// and must not leak into the field adjustments
	committed [NumRegisters]uint32

	// transaction depth. writes stay deferred while > 0
	depth int

	// a blank request (HVideo=0) waiting for the next commit
	pendingBlank bool

	// which field the previous vblank left us in. meaningful only while
	// serrate is enabled
	field int

	// line interrupt dispatch. table is live; staged is the table being
	// built, swapped in at vblank when stagedValid is set
	table       lineTable
	staged      lineTable
	stagedValid bool
	cursor      int
}

// NewVI creates the driver for the given television standard, programs the
// timing preset and installs the display interrupt at the vblank half-line.
// The preset registers are committed at the first safe point, which with the
// display blanked (as it is out of reset) is immediately.
func NewVI(hw Hardware, tv TVType) (*VI, error) {
	if tv < TVPal || tv > TVMpal {
		return nil, curated.Errorf(UnsupportedTVType, tv)
	}

	v := &VI{
		hw:     hw,
		tv:     tv,
		preset: PresetFor(tv, false),
	}
	v.reset()

	ctrl := CtrlPixelAdvanceDefault
	if bb, ok := hw.(BBPlayer); ok && bb.BBPlayer() {
		ctrl = CtrlPixelAdvanceBBPlayer
	}

	v.WriteBegin()
	v.WriteMasked(Ctrl, CtrlPixelAdvance, ctrl)
	v.WriteEnd()

	hw.RegisterHandler(v.interrupt)
	v.hw.Poke(VIntr, VIntrSet(VCurrentVBlank))

	return v, nil
}

// reset loads the preset into the shadow file and marks every picture
// register pending, so the whole configuration is programmed at the next
// safe point. the interrupt registers are never part of a batch.
func (v *VI) reset() {
	v.crit.Lock()
	defer v.crit.Unlock()

	v.shadow = v.preset.Regs
	v.committed = [NumRegisters]uint32{}
	v.pending = (1 << NumRegisters) - 1
	v.pending &^= 1<<uint(VIntr) | 1<<uint(VCurrent)
	v.depth = 0
	v.pendingBlank = false
	v.field = 0

	v.table = lineTable{}
	v.table.entries[0] = lineEntry{line: VCurrentVBlank, internal: true}
	v.table.n = 1
	v.staged = lineTable{}
	v.stagedValid = false
	v.cursor = 0
}

// TV returns the television standard the driver was created for.
func (v *VI) TV() TVType {
	return v.tv
}

// Preset returns the timing preset the driver was initialised with.
func (v *VI) Preset() *Preset {
	return v.preset
}

// Read returns the current state of a register, including pending changes.
//
// This is not the same as sampling the hardware register: any write issued
// earlier but not yet applied is reflected in the returned value, which is
// what keeps multi-register updates consistent from the caller's point of
// view.
func (v *VI) Read(reg Register) uint32 {
	if reg < 0 || reg >= NumRegisters {
		panic(fmt.Sprintf("vi: read of out-of-range register (%d)", reg))
	}
	v.crit.Lock()
	defer v.crit.Unlock()
	return v.shadow[reg]
}

// Write a register at the next safe point. Equivalent to WriteMasked with a
// full mask.
func (v *VI) Write(reg Register, value uint32) {
	v.WriteMasked(reg, 0xffffffff, value)
}

// WriteMasked changes only the bits of the register selected by mask,
// leaving the rest untouched. The write lands in the shadow register file
// immediately (and is visible to Read) but reaches the hardware at the next
// safe point, or right away if the beam is already inside vertical blanking.
//
// Setting bits in value outside of mask is a programming error and panics:
// it means the caller is writing to bits it doesn't own.
//
// VCurrent is read-only. VIntr bypasses the deferral machinery entirely as
// it belongs to the interrupt dispatch, not the picture configuration. Note
// that the dispatch re-arms VIntr from the line interrupt table on every
// firing, so a direct write lasts at most one interrupt: use SetLineInterrupt
// for anything persistent.
func (v *VI) WriteMasked(reg Register, mask uint32, value uint32) {
	if reg < 0 || reg >= NumRegisters {
		panic(fmt.Sprintf("vi: write to out-of-range register (%d)", reg))
	}
	if reg == VCurrent {
		panic("vi: write to read-only V_CURRENT register")
	}
	if value&^mask != 0 {
		panic(fmt.Sprintf("vi: write to %s sets bits outside of mask (value %08x, mask %08x)", reg, value, mask))
	}

	v.crit.Lock()
	v.shadow[reg] = (v.shadow[reg] &^ mask) | value
	if reg == VIntr {
		v.hw.Poke(VIntr, v.shadow[reg])
		v.crit.Unlock()
		return
	}
	v.pending |= 1 << uint(reg)
	v.maybeFlush()
	v.crit.Unlock()

	if reg == Ctrl || reg == XScale || reg == YScale {
		v.advise()
	}
}

// WriteBegin starts a batch of register writes. Writes issued before the
// matching WriteEnd() are applied to the hardware together, never split
// across two safe points.
//
// Batches nest. Nothing is committed until the outermost WriteEnd().
func (v *VI) WriteBegin() {
	v.crit.Lock()
	defer v.crit.Unlock()
	v.depth++
}

// WriteEnd ends a batch of register writes started with WriteBegin(). It
// does not block until vblank: on return the registers may still be pending,
// though Read() already returns the new values.
//
// WriteEnd without a matching WriteBegin is a programming error and panics.
func (v *VI) WriteEnd() {
	v.crit.Lock()
	defer v.crit.Unlock()
	if v.depth <= 0 {
		panic("vi: WriteEnd without matching WriteBegin")
	}
	v.depth--
	v.maybeFlush()
}

// maybeFlush commits pending registers if no transaction is open and the
// beam is inside (or close enough to) the vertical blanking period. crit
// must be held.
//
// This immediate path is mandatory, not an optimisation: with the display
// blanked the chip raises no interrupts, so this is the only way registers
// ever change once the display has been turned off.
func (v *VI) maybeFlush() {
	if v.depth > 0 {
		return
	}

	// safe while the beam is at least two lines above the first visible
	// line. the vblank half-line itself is always considered safe
	firstLine := int(v.shadow[VVideo] >> 16)
	safe := firstLine - 2
	if safe < 2 {
		safe = 2
	}

	if int(v.hw.Peek(VCurrent)&^1) < safe {
		v.flush()
	}
}

// flush commits every pending register and any pending blank request to the
// hardware and clears the pending bits. crit must be held.
//
// Only registers that actually changed are written, rather than rewriting
// the whole file: it keeps the interrupt-disabled window short and leaves
// room for code that bangs the registers directly.
func (v *VI) flush() {
	flushed := false
	for reg := Register(0); reg < NumRegisters; reg++ {
		if v.pending&(1<<uint(reg)) != 0 {
			v.hw.Poke(reg, v.shadow[reg])
			v.committed[reg] = v.shadow[reg]
			v.pending &^= 1 << uint(reg)
			flushed = true
		}
	}

	if v.pendingBlank {
		v.hw.Poke(HVideo, 0)
		v.committed[HVideo] = 0
		v.pendingBlank = false
	}

	if flushed {
		logger.Logf("vi", "registers: %s", v.dump())
	}
}

// dump returns a single-line hex rendering of the shadow register file. crit
// must be held.
func (v *VI) dump() string {
	s := strings.Builder{}
	for reg := Register(0); reg < NumRegisters; reg++ {
		if reg > 0 {
			s.WriteString(" ")
		}
		s.WriteString(fmt.Sprintf("%08x", v.shadow[reg]))
	}
	return s.String()
}

// Blank hides the picture without stopping the video signal. When set is
// true the active image width is zeroed at the next safe point; when false
// the configured display area is restored.
//
// This is different from Show(nil), which stops the signal altogether.
func (v *VI) Blank(set bool) {
	if set {
		v.crit.Lock()
		v.pendingBlank = true
		v.crit.Unlock()
		return
	}

	// re-issuing the shadow value marks the register pending again,
	// undoing the zero that the blank request wrote
	v.Write(HVideo, v.Read(HVideo))
}

// WaitVBlank blocks until the beginning of the next vertical blanking
// period. When the hardware access object provides a scheduler wait
// primitive that is used; otherwise the half-line counter is polled.
//
// If the display is off the function returns immediately: a blanked VI
// never reaches the vblank condition and the wait would never complete.
func (v *VI) WaitVBlank() {
	if v.Read(Ctrl)&CtrlType == CtrlTypeBlank {
		return
	}

	if w, ok := v.hw.(VBlankWaiter); ok {
		w.WaitVBlank()
		return
	}

	for v.hw.Peek(VCurrent)&^1 != VCurrentVBlank {
	}
}
