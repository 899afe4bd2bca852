/*
Runs the testbed puppet through the engine. Flags select the device and the
configuration file, which is watched and re-applied between frames.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/marionette/engine"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/renderer"
	"github.com/spaghettifunk/marionette/testbed"
)

func main() {
	configPath := flag.String("config", "", "path of the TOML configuration file")
	device := flag.String("device", "opengl", "rendering device: opengl or software")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until the window closes)")
	flag.Parse()

	rt, err := renderer.ParseRendererType(*device)
	if err != nil {
		core.LogFatal(err.Error())
	}

	tb := testbed.NewTestGame(&engine.ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		ConfigPath:  *configPath,
		Device:      rt,
		MaxFrames:   *frames,
		LimitFrames: rt == renderer.Software,
	})

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		e.Stop()
	}()

	// run engine
	if err := e.Run(); err != nil {
		core.LogFatal(err.Error())
	}
}
