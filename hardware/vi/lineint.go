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

	"github.com/gophervi/gophervi/curated"
)

// MaxLineInterrupts is the number of caller-installed line interrupts that
// can be active at once, in addition to the driver's own vblank entry.
const MaxLineInterrupts = 4

// lineEntry is one (half-line, handler) pair in the dispatch table. the
// internal flag marks the permanent vblank entry.
type lineEntry struct {
	line     int
	handler  func()
	internal bool
}

// lineTable is a fixed-capacity dispatch table ordered by half-line. it is a
// value type: tables are double-buffered by plain assignment, with the copy
// built outside the dispatch path and swapped in at vblank.
type lineTable struct {
	entries [MaxLineInterrupts + 1]lineEntry
	n       int
}

// insert adds an entry keeping the table ordered by line. an entry with the
// same line is replaced. returns an error if the table is full.
func (t *lineTable) insert(line int, handler func()) error {
	for i := 0; i < t.n; i++ {
		if t.entries[i].line == line && !t.entries[i].internal {
			t.entries[i].handler = handler
			return nil
		}
	}

	if t.n >= len(t.entries) {
		return fmt.Errorf("table full")
	}

	// find insertion point
	i := 0
	for i < t.n && t.entries[i].line <= line {
		i++
	}
	copy(t.entries[i+1:t.n+1], t.entries[i:t.n])
	t.entries[i] = lineEntry{line: line, handler: handler}
	t.n++
	return nil
}

// remove deletes the entry for a line. returns false if no such entry
// exists. the internal vblank entry cannot be removed.
func (t *lineTable) remove(line int) bool {
	for i := 0; i < t.n; i++ {
		if t.entries[i].line == line && !t.entries[i].internal {
			copy(t.entries[i:t.n-1], t.entries[i+1:t.n])
			t.n--
			return true
		}
	}
	return false
}

// indexInternal returns the index of the permanent vblank entry.
func (t *lineTable) indexInternal() int {
	for i := 0; i < t.n; i++ {
		if t.entries[i].internal {
			return i
		}
	}
	return 0
}

// SetLineInterrupt installs handler to be called when the beam reaches the
// given half-line; a nil handler removes a previously installed one.
//
// Changes do not take effect immediately. They accumulate in a staging copy
// of the dispatch table which is swapped in at the next vblank, so the table
// being iterated by the interrupt dispatch is never mutated under it.
//
// Removing a line that was never installed is a programming error and
// panics. A full table is a resource limit and is reported as an error.
func (v *VI) SetLineInterrupt(line int, handler func()) error {
	v.crit.Lock()
	defer v.crit.Unlock()

	t := v.table
	if v.stagedValid {
		t = v.staged
	}

	if handler == nil {
		if !t.remove(line) {
			panic(fmt.Sprintf("vi: removing unknown line interrupt (half-line %d)", line))
		}
	} else {
		if err := t.insert(line, handler); err != nil {
			return curated.Errorf(LineInterruptsFull, MaxLineInterrupts)
		}
	}

	v.staged = t
	v.stagedValid = true
	return nil
}
