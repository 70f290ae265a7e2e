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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gophervi/gophervi/hardware/simulator"
	"github.com/gophervi/gophervi/hardware/vi"
	"github.com/gophervi/gophervi/hardware/vi/caption"
	"github.com/gophervi/gophervi/logger"
	"github.com/gophervi/gophervi/modalflag"
	"github.com/gophervi/gophervi/preview"
	"github.com/gophervi/gophervi/statsview"
	"github.com/gophervi/gophervi/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible. takes an optional int
	// argument, the exit status
	reqQuit stateReq = "QUIT"
)

type stateRequest struct {
	req  stateReq
	args interface{}
}

// gui is the part of the program that must live on the main thread. SDL
// requires window creation, servicing and destruction to happen there.
type gui interface {
	Destroy()

	// Service must be called frequently from the main thread. returns false
	// when the user has asked to quit
	Service() bool
}

// communication between main() and the launch() goroutine. gui creation has
// to be requested over a channel so that it happens on the main thread.
type mainSync struct {
	state   chan stateRequest
	creator chan func() (gui, error)

	// the result of creator is returned on one of these
	creation      chan gui
	creationError chan error
}

// #mainthread
func main() {
	sync := &mainSync{
		state:         make(chan stateRequest),
		creator:       make(chan func() (gui, error)),
		creation:      make(chan gui),
		creationError: make(chan error),
	}

	exitVal := 0

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	go launch(sync)

	done := false
	var g gui
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")
			done = true

		case creator := <-sync.creator:
			if g != nil {
				g.Destroy()
			}

			ng, err := creator()
			if err != nil {
				sync.creationError <- err
				g = nil
			} else {
				g = ng
				sync.creation <- g
			}

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if v, ok := state.args.(int); ok {
					exitVal = v
				}
			}

		default:
			if g != nil && !g.Service() {
				done = true
			}
		}
	}

	if g != nil {
		g.Destroy()
	}

	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses the mainSync instance to
// request gui creation and to quit.
func launch(sync *mainSync) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "SPECS")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, sync)

	case "SPECS":
		err = specs(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

// run drives the simulated chip through the driver and previews the result.
func run(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	tv := md.AddString("tv", "NTSC", "television standard: NTSC, PAL, MPAL")
	interlaced := md.AddBool("interlaced", false, "interlaced output")
	captionText := md.AddString("caption", "", "closed caption to transmit (NTSC only)")
	frames := md.AddInt("frames", 0, "number of frames to run for (0 = until closed)")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("statsview", false, "run stats server")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	tvType, err := parseTVType(*tv)
	if err != nil {
		return err
	}

	sim := simulator.New()
	sim.TickOnPeek = true

	v, err := vi.NewVI(sim, tvType)
	if err != nil {
		return err
	}

	if *interlaced {
		v.SetInterlaced(true)
	}

	// two framebuffers to flip between, so buffer changes are visible
	fb := [2]vi.Framebuffer{
		{Origin: 0x00100000, Width: 320, Height: 240, BPP: 16},
		{Origin: 0x00140000, Width: 320, Height: 240, BPP: 16},
	}
	v.Show(&fb[0])

	var inj *caption.Injector
	if *captionText != "" {
		inj, err = caption.New(v, sim)
		if err != nil {
			return err
		}
		if err := inj.Start(); err != nil {
			return err
		}
		inj.Prepare(caption.CC1, *captionText, nil)
		inj.Show(caption.CC1, 5.0)
	}

	// settle the configuration before sizing the window
	sim.StepFrame()

	sync.creator <- func() (gui, error) {
		return preview.NewWindow(sim)
	}

	select {
	case <-sync.creation:
	case err := <-sync.creationError:
		return err
	}

	for n := 0; *frames == 0 || n < *frames; n++ {
		sim.StepFrame()

		// flip buffers once a second
		if n%60 == 59 {
			v.Show(&fb[(n/60+1)%2])
		}

		time.Sleep(16 * time.Millisecond)
	}

	if inj != nil {
		fmt.Printf("caption irq errors: %d\n", inj.Errors())
	}

	return nil
}

// specs prints the timing preset tables and their refresh rates.
func specs(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	fmt.Printf("%s (%s)\n\n", version.ApplicationName, func() string {
		ver, rev, _ := version.Version()
		return fmt.Sprintf("%s %s", ver, rev)
	}())

	for _, interlaced := range []bool{false, true} {
		for _, tv := range []vi.TVType{vi.TVPal, vi.TVNtsc, vi.TVMpal} {
			pre := vi.PresetFor(tv, interlaced)

			mode := "progressive"
			if interlaced {
				mode = "interlaced"
			}
			fmt.Printf("%s %s (clock %dHz)\n", tv, mode, pre.Clock)

			for reg := vi.Register(0); reg < vi.NumRegisters; reg++ {
				fmt.Printf("  %-12s %08x\n", reg, pre.Regs[reg])
			}

			sim := simulator.New()
			v, err := vi.NewVI(sim, tv)
			if err != nil {
				return err
			}
			v.SetInterlaced(interlaced)
			fmt.Printf("  refresh rate %.4fHz\n\n", v.RefreshRate())
		}
	}

	return nil
}

func parseTVType(s string) (vi.TVType, error) {
	switch strings.ToUpper(s) {
	case "NTSC":
		return vi.TVNtsc, nil
	case "PAL":
		return vi.TVPal, nil
	case "MPAL", "M-PAL":
		return vi.TVMpal, nil
	}
	return 0, fmt.Errorf("unknown television standard (%s)", s)
}
