package main

import (
	"fmt"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/system/treed"
)

func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Serve.Parse(cc, args)
	if err != nil {
		return err
	}

	// Start gops agent for debugging
	if err := agent.Listen(agent.Options{}); err != nil {
		fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
	}

	model := treeconf.New(nil)
	if cfg.ConfigFile != "" {
		if err := model.LoadFile(cfg.ConfigFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	if cfg.Watch {
		if cfg.ConfigFile == "" {
			return fmt.Errorf("%w: -watch requires -config", cli.ErrUsage)
		}
		rl, err := treeconf.NewReloader(model, cfg.ConfigFile, func(err error) {
			if err != nil {
				theLog.Error("reload failed", "file", cfg.ConfigFile, "err", err)
				return
			}
			theLog.Info("configuration reloaded", "file", cfg.ConfigFile)
		})
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.ConfigFile, err)
		}
		defer rl.Close()
	}

	srv := treed.New(&treed.Spec{Model: model})
	if err := srv.Start(cfg.Addr); err != nil {
		return fmt.Errorf("failed to start TCP listener: %w", err)
	}
	fmt.Fprintf(cc.Out, "treed listening on %s\n", srv.Addr())
	defer srv.Close()

	// Block forever
	select {}
}
