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

// the EIA-608 waveform, as laid out in the one-line framebuffer. levels are
// RGBA16 pixels: IRE 50 for a mark, IRE 0 for a space.
const (
	sigOn  = 0x8421
	sigOff = 0x0000

	// scale factor between signal samples and framebuffer pixels. the
	// horizontal scale registers are programmed to stretch the buffer so
	// that one data bit lasts the 1.986us the standard asks for
	sigwScale = 4

	// blank pixels before the clock lead-in and after the data
	sigwBlank = 7

	// 19 bits of clock lead-in, then 16 data bits at twice the width
	sigwLeadin = 19
	sigwBit    = 2
	sigwData   = 16 * sigwBit

	sigwLen = sigwBlank + (sigwLeadin+sigwData)*sigwScale + sigwBlank
)

// writeBits renders nbits signal bits of the given level into lb starting at
// pos, each bit sigwScale pixels wide. returns the position after the last
// pixel written.
func writeBits(lb []uint16, pos int, on bool, nbits int) int {
	val := uint16(sigOff)
	if on {
		val = sigOn
	}
	for i := 0; i < sigwScale*nbits; i++ {
		lb[pos] = val
		pos++
	}
	return pos
}

// newLineBuffer allocates the one-line framebuffer and renders the parts of
// the waveform that never change: the blanks and the clock lead-in. The data
// section is rewritten every frame by renderWord.
func newLineBuffer() []uint16 {
	lb := make([]uint16, sigwLen)

	pos := sigwBlank
	clock := 0x61555
	for i := 0; i < sigwLeadin; i++ {
		pos = writeBits(lb, pos, clock&1 != 0, 1)
		clock >>= 1
	}

	return lb
}

// renderWord renders one 16-bit EIA-608 word into the data section of the
// line buffer. The wire format is LSB-first with the low byte transmitted
// first, hence the byte swap.
func (inj *Injector) renderWord(data uint16) {
	pos := sigwBlank + sigwLeadin*sigwScale
	data = data<<8 | data>>8
	for i := 0; i < 16; i++ {
		pos = writeBits(inj.linebuffer, pos, data&1 != 0, sigwBit)
		data >>= 1
	}
}
