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

// interrupt is the handler installed with Hardware.RegisterHandler. It runs
// whenever the half-line counter reaches the value armed in VIntr, which is
// always the line of the table entry at cursor. After dispatching it arms
// the next entry, wrapping to the first after the last.
func (v *VI) interrupt() {
	v.crit.Lock()
	e := v.table.entries[v.cursor]
	v.crit.Unlock()

	if e.internal {
		v.vblankSync()
	} else if e.handler != nil {
		e.handler()
	}

	v.crit.Lock()
	v.cursor = (v.cursor + 1) % v.table.n
	v.hw.Poke(VIntr, VIntrSet(v.table.entries[v.cursor].line))
	v.crit.Unlock()
}

// vblankSync is the single point of truth for "a new frame has started". On
// each firing it commits pending registers (unless a transaction is open),
// swaps in a newly built line-interrupt table if one is queued, and performs
// the interlaced-field bookkeeping.
func (v *VI) vblankSync() {
	v.crit.Lock()
	defer v.crit.Unlock()

	if v.depth == 0 {
		v.flush()
	}

	if v.stagedValid {
		v.table = v.staged
		v.stagedValid = false
		v.cursor = v.table.indexInternal()
	}

	v.fieldUpkeep()
}

// fieldUpkeep performs the per-field adjustments needed for interlaced
// output. Everything here works from the committed register values, not the
// shadow: an open batch may have moved the shadow ahead of the hardware and
// must stay invisible until its own flush. crit must be held.
func (v *VI) fieldUpkeep() {
	if v.committed[Ctrl]&CtrlSerrate == 0 {
		v.field = 0
		return
	}

	v.field ^= 1

	// the second field of each frame is drawn one scanline lower: nudge
	// the committed origin by one scanline's worth of bytes. the shadow
	// register keeps the un-nudged value
	origin := v.committed[Origin]
	if v.field == 1 {
		origin += v.lineStride()
	}
	v.hw.Poke(Origin, OriginSet(origin))

	// M-PAL erratum: the colour burst window must alternate every field or
	// the top of the picture is corrupted. the toggle depends on nothing
	// but the detected standard
	if v.tv == TVMpal {
		if v.field == 1 {
			v.hw.Poke(VBurst, VBurstSet(11, 514))
		} else {
			v.hw.Poke(VBurst, v.committed[VBurst])
		}
	}
}

// lineStride is the size of one framebuffer scanline in bytes, derived from
// the committed Width and the pixel type in Ctrl. crit must be held.
func (v *VI) lineStride() uint32 {
	stride := v.committed[Width] & 0xfff
	switch v.committed[Ctrl] & CtrlType {
	case CtrlType16BPP:
		return stride * 2
	case CtrlType32BPP:
		return stride * 4
	}
	return 0
}
