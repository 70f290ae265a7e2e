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

// encodeChar translates one unicode codepoint into EIA-608 form. The result
// is packed as follows:
//
//   - 0 means the character has no EIA-608 encoding
//   - 1-byte values are characters of the standard set
//   - 2-byte values are characters of the special North American set, which
//     occupy a whole 16-bit word on the wire
//   - 3-byte values are extended characters: the top byte is a standard-set
//     fallback glyph and the low two bytes the extended 16-bit word. The
//     extended word implies a backspace on the receiver, so the fallback is
//     always transmitted first; decoders without the extended set keep it.
func encodeChar(r rune) uint32 {
	if r < 0x80 {
		// the standard set is mostly ASCII but reassigns a few codepoints
		switch r {
		case '\'':
			return 0x1229 | '\''<<16 // right single quotation mark
		case '*':
			return 0x1228 | '#'<<16
		case '\\':
			return 0x132b | '/'<<16
		case '^':
			return 0x132c | '/'<<16
		case '_':
			return 0x132d | '-'<<16
		case '`':
			return 0x1226 | '\''<<16
		case '{':
			return 0x1329 | '['<<16
		case '|':
			return 0x132e | '-'<<16
		case '}':
			return 0x132a | ']'<<16
		case '~':
			return 0x132f | '-'<<16
		}
		return uint32(r)
	}

	switch r {
	// ASCII codepoints vacated above are reassigned to these glyphs
	case 'á':
		return 0x2a
	case 'é':
		return 0x5c
	case 'í':
		return 0x5e
	case 'ó':
		return 0x5f
	case 'ú':
		return 0x60
	case 'ç':
		return 0x7b
	case '÷':
		return 0x7c
	case 'Ñ':
		return 0x7d
	case 'ñ':
		return 0x7e
	case '█':
		return 0x7f
	case '’':
		return 0x27 // apostrophe

	// special North American set
	case '®':
		return 0x1130
	case '°':
		return 0x1131
	case '½':
		return 0x1132
	case '¿':
		return 0x1133
	case '™':
		return 0x1134
	case '¢':
		return 0x1135
	case '£':
		return 0x1136
	case '♪':
		return 0x1137
	case 'à':
		return 0x1138
	case 'è':
		return 0x113a
	case 'â':
		return 0x113b
	case 'ê':
		return 0x113c
	case 'î':
		return 0x113d
	case 'ô':
		return 0x113e
	case 'û':
		return 0x113f

	// extended Spanish/miscellaneous
	case 'Á':
		return 0x1220 | 'A'<<16
	case 'É':
		return 0x1221 | 'E'<<16
	case 'Ó':
		return 0x1222 | 'O'<<16
	case 'Ú':
		return 0x1223 | 'U'<<16
	case 'Ü':
		return 0x1224 | 'U'<<16
	case 'ü':
		return 0x1225 | 'u'<<16
	case '‘':
		return 0x1226 | '\''<<16
	case '¡':
		return 0x1227 | '!'<<16
	case '©':
		return 0x122b | 'c'<<16
	case '—':
		return 0x122a | '-'<<16
	case '℠':
		return 0x122c | 's'<<16
	case '•':
		return 0x122d | '.'<<16
	case '“':
		return 0x122e | '"'<<16
	case '”':
		return 0x122f | '"'<<16

	// extended French
	case 'À':
		return 0x1230 | 'A'<<16
	case 'Â':
		return 0x1231 | 'A'<<16
	case 'Ç':
		return 0x1232 | 'C'<<16
	case 'È':
		return 0x1233 | 'E'<<16
	case 'Ê':
		return 0x1234 | 'E'<<16
	case 'Ë':
		return 0x1235 | 'E'<<16
	case 'ë':
		return 0x1236 | 'e'<<16
	case 'Î':
		return 0x1237 | 'I'<<16
	case 'Ï':
		return 0x1238 | 'I'<<16
	case 'ï':
		return 0x1239 | 'i'<<16
	case 'Ô':
		return 0x123a | 'O'<<16
	case 'Ù':
		return 0x123b | 'U'<<16
	case 'ù':
		return 0x123c | 'u'<<16
	case 'Û':
		return 0x123d | 'U'<<16
	case '«':
		return 0x123e | '<'<<16
	case '»':
		return 0x123f | '>'<<16

	// Portuguese
	case 'Ã':
		return 0x1320 | 'A'<<16
	case 'ã':
		return 0x1321 | 'a'<<16
	case 'Í':
		return 0x1322 | 'I'<<16
	case 'Ì':
		return 0x1323 | 'I'<<16
	case 'ì':
		return 0x1324 | 'i'<<16
	case 'Ò':
		return 0x1325 | 'O'<<16
	case 'ò':
		return 0x1326 | 'o'<<16
	case 'Õ':
		return 0x1327 | 'O'<<16
	case 'õ':
		return 0x1328 | 'o'<<16

	// German/Danish
	case 'Ä':
		return 0x1330 | 'A'<<16
	case 'ä':
		return 0x1331 | 'a'<<16
	case 'Ö':
		return 0x1332 | 'O'<<16
	case 'ö':
		return 0x1333 | 'o'<<16
	case 'ß':
		return 0x1334 | 'S'<<16
	case '¥':
		return 0x1335 | 'Y'<<16
	case '¤':
		return 0x1336 | 'C'<<16
	case '¦':
		return 0x1337 | '|'<<16
	case 'Å':
		return 0x1338 | 'A'<<16
	case 'å':
		return 0x1339 | 'a'<<16
	case 'Ø':
		return 0x133a | 'O'<<16
	case 'ø':
		return 0x133b | 'o'<<16
	case '┌':
		return 0x133c | '+'<<16
	case '┐':
		return 0x133d | '+'<<16
	case '└':
		return 0x133e | '+'<<16
	case '┘':
		return 0x133f | '+'<<16
	}

	return 0
}
