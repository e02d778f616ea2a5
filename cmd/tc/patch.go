package main

import (
	"fmt"
	"io"
	"os"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/encode"

	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires 2 arguments, a patch and a file to which to apply it", cli.ErrUsage)
	}
	patch, err := patchArg(cfg, cc, args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	root, err := loadArg(cfg.MainConfig, cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	m := treeconf.New(root)
	if cfg.Merge {
		err = m.ApplyMergePatch(patch)
	} else {
		err = m.ApplyJSONPatch(patch)
	}
	if err != nil {
		return fmt.Errorf("error patching %s: %w", args[1], err)
	}
	if err := encode.Encode(m.Root(), cc.Out, cfg.encOpts(cc.Out)...); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

// patchArg reads the patch bytes: a JSON literal with -s, a file with
// -f, a literal otherwise.
func patchArg(cfg *PatchConfig, cc *cli.Context, arg string) ([]byte, error) {
	if cfg.String && cfg.File {
		return nil, fmt.Errorf("only one of -s, -f may be specified")
	}
	if cfg.String || !cfg.File {
		return []byte(arg), nil
	}
	if arg == "-" {
		return io.ReadAll(cc.In)
	}
	return os.ReadFile(arg)
}
