package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/eponymous/proptree/format"
)

type MainConfig struct {
	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	X bool `cli:"name=x aliases=xml desc='do i/o in xml'"`
	I bool `cli:"name=i aliases=ini desc='do i/o in ini'"`
	N bool `cli:"name=n aliases=info desc='do i/o in info'"`

	Color   bool `cli:"name=color desc='force colored output'"`
	Compact bool `cli:"name=compact desc='compact output'"`
	Agent   bool `cli:"name=agent desc='start a gops debug agent'"`

	NoConcatText   bool `cli:"name=nc aliases=no-concat-text desc='xml: keep text only as <xmltext> children'"`
	NoComments     bool `cli:"name=nx aliases=no-comments desc='xml: drop comments'"`
	TrimWhitespace bool `cli:"name=tw aliases=trim-whitespace desc='xml: trim whitespace in text'"`

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

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// flagFormat returns the format picked by the single-letter format
// flags, if any.
func (cfg *MainConfig) flagFormat() (format.Format, bool) {
	switch {
	case cfg.J:
		return format.JSONFormat, true
	case cfg.X:
		return format.XMLFormat, true
	case cfg.I:
		return format.INIFormat, true
	case cfg.N:
		return format.INFOFormat, true
	}
	return 0, false
}

// inFormat resolves the input format for a file argument: -I wins,
// then the single-letter flags, then the file suffix, then INFO.
func (cfg *MainConfig) inFormat(file string) format.Format {
	if cfg.InFormat != nil {
		return *cfg.InFormat
	}
	if f, ok := cfg.flagFormat(); ok {
		return f
	}
	if f, err := format.Sniff(file); err == nil {
		return f
	}
	return format.INFOFormat
}

// outFormat resolves the output format: -O wins, then the
// single-letter flags, then the format the input arrived in.
func (cfg *MainConfig) outFormat(in format.Format) format.Format {
	if cfg.OutFormat != nil {
		return *cfg.OutFormat
	}
	if f, ok := cfg.flagFormat(); ok {
		return f
	}
	return in
}

type ViewConfig struct {
	*MainConfig

	View *cli.Command
}

type ConvertConfig struct {
	*MainConfig

	Convert *cli.Command
}

type GetConfig struct {
	*MainConfig

	// Default is set by the hand-built -d opt in GetCommand; HasDef
	// distinguishes an explicit empty default from no default.
	Default string
	HasDef  bool

	Get *cli.Command
}

type KeysConfig struct {
	*MainConfig

	Counts bool `cli:"name=c aliases=counts desc='print each distinct key with its count'"`

	Keys *cli.Command
}

type FindConfig struct {
	*MainConfig

	Values bool `cli:"name=v aliases=values desc='print values instead of paths'"`

	Find *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Reverse bool `cli:"name=r desc='reverse the diff'"`

	Diff *cli.Command
}
