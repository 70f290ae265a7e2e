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

import "github.com/gophervi/gophervi/logger"

// advise inspects the shadow configuration for register combinations that
// the hardware accepts but that are almost certainly not what the caller
// wanted. Advisory only: the configuration is applied regardless.
func (v *VI) advise() {
	ctrl := v.Read(Ctrl)

	if ctrl&CtrlDivotEnable != 0 && ctrl&CtrlAAMode == CtrlAAModeNone {
		logger.Log("vi", "divot filter has no effect without anti-aliasing")
	}

	if ctrl&CtrlDeditherEnable != 0 && ctrl&CtrlType == CtrlType32BPP {
		logger.Log("vi", "dedither filter has no effect on a 32bpp framebuffer")
	}

	if ctrl&CtrlGammaDitherEnable != 0 && ctrl&CtrlGammaEnable == 0 {
		logger.Log("vi", "gamma dither has no effect without gamma correction")
	}
}
