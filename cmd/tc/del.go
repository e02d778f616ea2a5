package main

import (
	"fmt"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/encode"

	"github.com/scott-cotton/cli"
)

func del(cfg *DelConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Del.Parse(cc, args)
	if err != nil {
		cfg.Del.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: del requires a key and optionally a file", cli.ErrUsage)
	}
	key := args[0]
	file := "-"
	if len(args) == 2 {
		file = args[1]
	}
	root, err := loadArg(cfg.MainConfig, cc, file)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", file, err)
	}
	m := treeconf.New(root)
	if cfg.Values {
		err = m.ClearProperty(key)
	} else {
		err = m.ClearTree(key)
	}
	if err != nil {
		return fmt.Errorf("error clearing %q: %w", key, err)
	}
	if err := encode.Encode(m.Root(), cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
