package main

import (
	"fmt"
	"io"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/filter"

	"github.com/scott-cotton/cli"
)

func find(cfg *FindConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Find.Parse(cc, args)
	if err != nil {
		cfg.Find.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: find requires one argument, a filter expression", cli.ErrUsage)
	}
	src := args[0]
	if _, err := filter.Compile(src); err != nil {
		return err
	}
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for i, arg := range args {
		if err := findArg(cfg, cc, cc.Out, arg, src, i > 0); err != nil {
			return fmt.Errorf("error filtering %s with %q: %w", arg, src, err)
		}
	}
	return nil
}

func findArg(cfg *FindConfig, cc *cli.Context, w io.Writer, arg, src string, sep bool) error {
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
	h := m.Handler()
	hits, err := filter.Select(m.Root(), src, h)
	if err != nil {
		return err
	}
	for _, n := range hits {
		if cfg.Paths {
			fmt.Fprintln(w, filter.Env(n, h)["path"])
			continue
		}
		if err := encode.Encode(n, w, cfg.encOpts(w)...); err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
	}
	return nil
}
