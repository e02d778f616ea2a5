package main

import (
	"fmt"
	"io"
	"os"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/tree"

	"github.com/scott-cotton/cli"
)

func track(cfg *TrackConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Track.Parse(cc, args)
	if err != nil {
		cfg.Track.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: track requires a key, a patch file and optionally a file", cli.ErrUsage)
	}
	key := args[0]
	patchFile := args[1]
	file := "-"
	if len(args) == 3 {
		file = args[2]
	}
	if patchFile == "-" && file == "-" {
		return fmt.Errorf("%w: only one of the patch and the target may come from stdin", cli.ErrUsage)
	}
	var patch []byte
	if patchFile == "-" {
		patch, err = io.ReadAll(cc.In)
	} else {
		patch, err = os.ReadFile(patchFile)
	}
	if err != nil {
		return fmt.Errorf("error reading patch %q: %w", patchFile, err)
	}
	root, err := loadArg(cfg.MainConfig, cc, file)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", file, err)
	}
	m := treeconf.New(root)
	sel := tree.NewSelector(key)
	if err := m.Track(sel); err != nil {
		return fmt.Errorf("error tracking %q: %w", key, err)
	}
	if cfg.Merge {
		err = m.ApplyMergePatch(patch)
	} else {
		err = m.ApplyJSONPatch(patch)
	}
	if err != nil {
		return fmt.Errorf("error patching %s: %w", file, err)
	}
	detached, err := m.Detached(sel)
	if err != nil {
		return err
	}
	node, err := m.TrackedNode(sel)
	if err != nil {
		return err
	}
	state := "attached"
	if detached {
		state = "detached"
	}
	fmt.Fprintf(cc.Out, "# %s: %s\n", key, state)
	if err := encode.Encode(node, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
