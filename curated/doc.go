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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// A curated error is created with the Errorf() function. Like the Errorf()
// function in the fmt package it takes a formatting pattern and placeholder
// values, but the pattern is kept alongside the values so that the error can
// later be identified by it. For example:
//
//	e := curated.Errorf("caption: ring buffer full (%d entries)", n)
//
//	if curated.Is(e, "caption: ring buffer full (%d entries)") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar to Is() but checks for the pattern anywhere
// in the error chain, rather than only at the head.
//
// Packages that create errors in this way should export the pattern as a
// const string so that callers don't need to repeat it verbatim.
package curated
