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

// Package preview displays the simulator's rasterised output in an SDL
// window. SDL requires window creation and event handling to happen on the
// main OS thread, so NewWindow() and all Window methods must be called from
// the main goroutine, with the main goroutine locked to its thread.
package preview

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/gophervi/gophervi/hardware/simulator"
	"github.com/gophervi/gophervi/logger"
	"github.com/gophervi/gophervi/version"
)

// Window shows the simulated video output. Create with NewWindow().
type Window struct {
	sim *simulator.VI

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	// size of the current texture. the texture is recreated when the
	// rasterised frame changes size (eg. on a sync register change)
	width  int32
	height int32
}

// NewWindow creates the preview window sized to the simulator's current
// frame geometry.
func NewWindow(sim *simulator.VI) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("preview: %v", err)
	}

	img := sim.Rasterize()
	w := int32(img.Bounds().Dx())
	h := int32(img.Bounds().Dy())

	window, err := sdl.CreateWindow(version.ApplicationName,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("preview: %v", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("preview: %v", err)
	}

	win := &Window{
		sim:      sim,
		window:   window,
		renderer: renderer,
	}

	if err := win.resize(w, h); err != nil {
		win.Destroy()
		return nil, err
	}

	return win, nil
}

// resize (re)creates the streaming texture for a new frame geometry.
func (win *Window) resize(w int32, h int32) error {
	if win.texture != nil {
		win.texture.Destroy()
		win.texture = nil
	}

	texture, err := win.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		sdl.TEXTUREACCESS_STREAMING, w, h)
	if err != nil {
		return fmt.Errorf("preview: %v", err)
	}

	win.texture = texture
	win.width = w
	win.height = h
	return nil
}

// Render rasterises the simulator state and presents it.
func (win *Window) Render() error {
	img := win.sim.Rasterize()
	return win.present(img)
}

func (win *Window) present(img *image.RGBA) error {
	w := int32(img.Bounds().Dx())
	h := int32(img.Bounds().Dy())
	if w != win.width || h != win.height {
		if err := win.resize(w, h); err != nil {
			return err
		}
	}

	if err := win.texture.Update(nil, img.Pix, img.Stride); err != nil {
		return fmt.Errorf("preview: %v", err)
	}
	if err := win.renderer.Clear(); err != nil {
		return fmt.Errorf("preview: %v", err)
	}
	if err := win.renderer.Copy(win.texture, nil, nil); err != nil {
		return fmt.Errorf("preview: %v", err)
	}
	win.renderer.Present()

	return nil
}

// Service renders the current simulator state and handles pending window
// events. Returns false when the user has asked for the window to close.
//
// Must be called frequently and only from the main thread.
func (win *Window) Service() bool {
	if err := win.Render(); err != nil {
		logger.Logf("preview", "%v", err)
	}

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				return false
			}
		}
	}
	return true
}

// Destroy releases the window's SDL resources.
func (win *Window) Destroy() {
	if win.texture != nil {
		win.texture.Destroy()
	}
	if win.renderer != nil {
		win.renderer.Destroy()
	}
	if win.window != nil {
		win.window.Destroy()
	}
}
