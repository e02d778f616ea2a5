package main

import (
	"fmt"
	"io"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/encode"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a configuration key", cli.ErrUsage)
	}
	key := args[0]
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for i, arg := range args {
		if err := queryArg(cfg, cc, cc.Out, arg, key, i > 0); err != nil {
			return fmt.Errorf("error querying %s with %q: %w", arg, key, err)
		}
	}
	return nil
}

func queryArg(cfg *GetConfig, cc *cli.Context, w io.Writer, arg, key string, sep bool) error {
	root, err := loadArg(cfg.MainConfig, cc, arg)
	if err != nil {
		return err
	}
	if sep {
		if _, err := w.Write([]byte("---\n")); err != nil {
			return err
		}
	}
	m := treeconf.New(root)
	if cfg.Values {
		vals, err := m.Get(key)
		if err != nil {
			return err
		}
		for _, v := range vals {
			if v == nil {
				fmt.Fprintln(w, "null")
				continue
			}
			fmt.Fprintln(w, v)
		}
		return nil
	}
	hits, err := m.Query(key)
	if err != nil {
		return err
	}
	h := m.Handler()
	for _, hit := range hits {
		if hit.IsAttribute() {
			fmt.Fprintln(w, hit.Value(h))
			continue
		}
		if err := encode.Encode(hit.Node(), w, cfg.encOpts(w)...); err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
	}
	return nil
}
