package main

import (
	"fmt"
	"io"
	"os"

	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/format"
	"github.com/treeconf/treeconf/parse"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='encode with color'"`

	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) parseOpts() []parse.Option {
	var fmat format.Format
	switch {
	case cfg.Y:
		fmat = format.YAMLFormat
	case cfg.J:
		fmat = format.JSONFormat
	}
	if cfg.InFormat != nil {
		fmat = *cfg.InFormat
	}
	return []parse.Option{
		parse.ParseFormat(fmat),
	}
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	var fmat format.Format
	switch {
	case cfg.Y:
		fmat = format.YAMLFormat
	case cfg.J:
		fmat = format.JSONFormat
	}
	if cfg.OutFormat != nil {
		fmat = *cfg.OutFormat
	}
	res := []encode.EncodeOption{
		encode.EncodeFormat(fmat),
	}
	if cfg.Color {
		res = append(res, encode.EncodeColors(encode.NewColors()))
		return res
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
		return res
	}
	return res
}

type ViewConfig struct {
	*MainConfig

	View *cli.Command
}

type GetConfig struct {
	*MainConfig

	Values bool `cli:"name=values desc='print resolved values instead of subtrees'"`
	Get    *cli.Command
}

type FindConfig struct {
	*MainConfig

	Paths bool `cli:"name=paths desc='print node paths instead of subtrees'"`
	Find  *cli.Command
}

type SetConfig struct {
	*MainConfig

	Add bool `cli:"name=add desc='add a value instead of replacing'"`
	Set *cli.Command
}

type DelConfig struct {
	*MainConfig

	Values bool `cli:"name=values desc='clear values only, keep the nodes'"`
	Del    *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig

	Merge  bool `cli:"name=merge desc='apply as RFC 7386 merge patch'"`
	String bool `cli:"name=s desc='patch arg as string'"`
	File   bool `cli:"name=f desc='patch arg as file'"`

	Patch *cli.Command
}

type TrackConfig struct {
	*MainConfig

	Merge bool `cli:"name=merge desc='apply as RFC 7386 merge patch'"`

	Track *cli.Command
}

type ServeConfig struct {
	*MainConfig
	Serve      *cli.Command
	ConfigFile string `cli:"name=config desc='configuration file to serve'"`
	Addr       string `cli:"name=addr desc='TCP listen address' default=localhost:9131"`
	Watch      bool   `cli:"name=watch desc='reload the configuration file on change'"`
}
