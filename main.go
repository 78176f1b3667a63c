/*
Lumen opens a window and presents a triangle drawn by the shaders named in
the configuration file until the window is closed.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		core.LogError("%+v", err)
		os.Exit(1)
	}
}

func run(configPath string) (err error) {
	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	e := engine.New(cfg)
	defer func() {
		if shutdownErr := e.Shutdown(); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	if err := e.Initialize(); err != nil {
		return err
	}
	return e.Run(ctx)
}
