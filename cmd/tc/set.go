package main

import (
	"fmt"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/parse"

	"github.com/scott-cotton/cli"
)

func set(cfg *SetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Set.Parse(cc, args)
	if err != nil {
		cfg.Set.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: set requires a key, a value and optionally a file", cli.ErrUsage)
	}
	key := args[0]
	val, err := scalarArg(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	file := "-"
	if len(args) == 3 {
		file = args[2]
	}
	root, err := loadArg(cfg.MainConfig, cc, file)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", file, err)
	}
	m := treeconf.New(root)
	if cfg.Add {
		err = m.AddProperty(key, val)
	} else {
		err = m.SetProperty(key, val)
	}
	if err != nil {
		return fmt.Errorf("error setting %q: %w", key, err)
	}
	if err := encode.Encode(m.Root(), cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

// scalarArg decodes a command line value with the same scalar rules as
// configuration files, so "8080" becomes an int and "true" a bool.
func scalarArg(s string) (any, error) {
	n, err := parse.Parse([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("error decoding value %q: %w", s, err)
	}
	if n.ChildCount() > 0 {
		return nil, fmt.Errorf("value %q is not a scalar", s)
	}
	return n.Value(), nil
}
