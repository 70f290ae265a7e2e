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

import "fmt"

// Channel selects one of the two caption channels of the signal.
type Channel int

// The two caption channels.
const (
	CC1 Channel = 1
	CC2 Channel = 2
)

// Ctrl is a 16-bit EIA-608 control word, parity bits included.
type Ctrl uint16

// ctrlWord applies odd parity to both bytes of a control word.
func ctrlWord(c uint16) Ctrl {
	return Ctrl(uint16(oddParity(byte(c))) | uint16(oddParity(byte(c>>8)))<<8)
}

// The EIA-608 control words. Their exact semantics are stateful and
// non-trivial; refer to the standard before using them directly.
var (
	NOP    = ctrlWord(0x0000) // no operation
	CC1TS  = ctrlWord(0x1139) // CC1: transparent space
	CC2TS  = ctrlWord(0x1939) // CC2: transparent space
	CC1RCL = ctrlWord(0x1420) // CC1: resume caption loading
	CC2RCL = ctrlWord(0x1c20) // CC2: resume caption loading
	CC1BS  = ctrlWord(0x1421) // CC1: backspace
	CC2BS  = ctrlWord(0x1c21) // CC2: backspace
	CC1AOF = ctrlWord(0x1422) // CC1: alarm off
	CC2AOF = ctrlWord(0x1c22) // CC2: alarm off
	CC1AON = ctrlWord(0x1423) // CC1: alarm on
	CC2AON = ctrlWord(0x1c23) // CC2: alarm on
	CC1DER = ctrlWord(0x1424) // CC1: delete to end of row
	CC2DER = ctrlWord(0x1c24) // CC2: delete to end of row
	CC1RU2 = ctrlWord(0x1425) // CC1: roll-up 2 rows
	CC2RU2 = ctrlWord(0x1c25) // CC2: roll-up 2 rows
	CC1RU3 = ctrlWord(0x1426) // CC1: roll-up 3 rows
	CC2RU3 = ctrlWord(0x1c26) // CC2: roll-up 3 rows
	CC1RU4 = ctrlWord(0x1427) // CC1: roll-up 4 rows
	CC2RU4 = ctrlWord(0x1c27) // CC2: roll-up 4 rows
	CC1FON = ctrlWord(0x1428) // CC1: flash on
	CC2FON = ctrlWord(0x1c28) // CC2: flash on
	CC1RDC = ctrlWord(0x1429) // CC1: resume direct captioning
	CC2RDC = ctrlWord(0x1c29) // CC2: resume direct captioning
	CC1TR  = ctrlWord(0x142a) // CC1: text restart
	CC2TR  = ctrlWord(0x1c2a) // CC2: text restart
	CC1RTD = ctrlWord(0x142b) // CC1: resume text display
	CC2RTD = ctrlWord(0x1c2b) // CC2: resume text display
	CC1EDM = ctrlWord(0x142c) // CC1: erase displayed memory
	CC2EDM = ctrlWord(0x1c2c) // CC2: erase displayed memory
	CC1CR  = ctrlWord(0x142d) // CC1: carriage return
	CC2CR  = ctrlWord(0x1c2d) // CC2: carriage return
	CC1ENM = ctrlWord(0x142e) // CC1: erase non-displayed memory
	CC2ENM = ctrlWord(0x1c2e) // CC2: erase non-displayed memory
	CC1EOC = ctrlWord(0x142f) // CC1: end of caption
	CC2EOC = ctrlWord(0x1c2f) // CC2: end of caption
	CC1TO1 = ctrlWord(0x1721) // CC1: tab offset 1
	CC2TO1 = ctrlWord(0x1f21) // CC2: tab offset 1
	CC1TO2 = ctrlWord(0x1722) // CC1: tab offset 2
	CC2TO2 = ctrlWord(0x1f22) // CC2: tab offset 2
	CC1TO3 = ctrlWord(0x1723) // CC1: tab offset 3
	CC2TO3 = ctrlWord(0x1f23) // CC2: tab offset 3
)

// Parms are the optional display parameters for Prepare.
type Parms struct {
	// the first row the caption occupies, range 1 to 15. zero means the
	// default of row 11, near the bottom of the screen
	Row int

	// underline the caption text
	Underline bool
}

// preamble address codes per row. the row ordering is an artifact of the
// standard, not of this table.
var pacCode = [15]uint16{
	0x1150, 0x1170, 0x1250, 0x1270, 0x1550, 0x1570, 0x1650, 0x1670,
	0x1750, 0x1770, 0x1050, 0x1350, 0x1370, 0x1450, 0x1470,
}

// writeIndent emits the preamble address code placing the cursor at a row
// and indent. The code only encodes indents in multiples of 4.
func (inj *Injector) writeIndent(cc Channel, row int, indent int, underline bool) {
	if cc != CC1 && cc != CC2 {
		panic(fmt.Sprintf("eia608: invalid caption channel (%d)", cc))
	}
	if row < 1 || row > 15 {
		panic(fmt.Sprintf("eia608: caption row out of range (%d)", row))
	}
	if indent < 0 || indent > 31 {
		panic(fmt.Sprintf("eia608: caption indent out of range (%d)", indent))
	}

	data := pacCode[row-1]
	data |= uint16(indent/4) << 1
	if underline {
		data |= 0x1
	}

	inj.WriteRaw(data, true)
	inj.WriteRaw(data, true)
}

// Prepare encodes a UTF-8 caption into the transmit buffer, in pop-on mode:
// the caption accumulates in the receiver's back buffer and appears all at
// once when Show() is called. Preparing a caption takes transmission time
// (roughly a second per 60 characters), so prepare ahead and Show on cue.
//
// The caption is word-wrapped into at most 4 rows of 32 columns, breaking at
// spaces and at embedded newlines; anything beyond the fourth row is
// truncated. Each row is centred. Characters with no EIA-608 encoding are
// dropped.
//
// A nil parms selects the defaults: row 11, no underline.
func (inj *Injector) Prepare(cc Channel, text string, parms *Parms) {
	const maxRows = 4
	const maxCols = 32

	if parms == nil {
		parms = &Parms{}
	}
	firstRow := parms.Row
	if firstRow == 0 {
		firstRow = 11
	}

	if cc == CC1 {
		inj.WriteCtrl(CC1RCL)
	} else {
		inj.WriteCtrl(CC2RCL)
	}

	// encode the string into EIA-608 tokens, one per visual glyph
	tokens := make([]uint32, 0, maxRows*maxCols+8)
	for _, r := range text {
		if len(tokens) >= cap(tokens) {
			break
		}
		tok := encodeChar(r)
		if tok == 0 {
			continue
		}
		if tok > 0x100 && cc == CC2 {
			tok |= 0x8000
		}
		tokens = append(tokens, tok)
	}

	idx := 0
	for row := 0; row < maxRows; row++ {
		// find where this row ends: at a newline, at the last space before
		// the 32nd column, or at the end of the text
		wrap := -1
		n := 0
		for ; n < maxCols; n++ {
			if idx+n >= len(tokens) {
				break
			}
			if tokens[idx+n] == '\n' {
				wrap = n
				break
			}
			if tokens[idx+n] == ' ' {
				wrap = n
			}
		}

		if n == 0 {
			if idx >= len(tokens) {
				break
			}
			idx++
			continue
		}

		if n == maxCols && idx+n < len(tokens) {
			n = wrap
		}

		// centre the row. the preamble code can only indent in steps of 4;
		// the remainder is made up with transparent spaces
		indent := (maxCols - n) / 2
		inj.writeIndent(cc, firstRow, indent&^3, parms.Underline)
		for i := 0; i < indent&3; i++ {
			if cc == CC1 {
				inj.WriteRaw(uint16(CC1TS), false)
			} else {
				inj.WriteRaw(uint16(CC2TS), false)
			}
		}

		// emit the row, packing single-byte characters into pairs
		accum := uint16(0)
		for i := 0; i < n; i++ {
			token := tokens[idx]
			idx++

			var single, pair uint16
			switch {
			case token>>16 != 0:
				single = uint16(token >> 16)
				pair = uint16(token)
			case token>>8 != 0:
				pair = uint16(token)
			default:
				single = uint16(token)
			}

			if single != 0 {
				if accum != 0 {
					accum |= single
					inj.WriteRaw(accum, true)
					accum = 0
				} else {
					accum = single << 8
				}
			}

			if pair != 0 {
				if accum != 0 {
					inj.WriteRaw(accum, true)
					accum = 0
				}
				inj.WriteRaw(pair, true)
			}
		}

		// flush a dangling single byte before the next control code
		if accum != 0 {
			inj.WriteRaw(accum, true)
		}

		firstRow++

		// skip the character the row wrapped on
		idx++
	}
}

// Show displays the caption prepared with Prepare, for the given duration in
// seconds, then erases it.
func (inj *Injector) Show(cc Channel, durationSecs float64) {
	if cc == CC1 {
		inj.WriteCtrl(CC1EOC)
	} else {
		inj.WriteCtrl(CC2EOC)
	}

	inj.crit.Lock()
	inj.forceClearTimer = int(durationSecs * 30)
	inj.crit.Unlock()
}
