package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/eponymous/proptree/format"
	"github.com/eponymous/proptree/info"
	"github.com/eponymous/proptree/ini"
	"github.com/eponymous/proptree/json"
	"github.com/eponymous/proptree/ptree"
	"github.com/eponymous/proptree/xml"
)

// readTree loads one file argument, "-" meaning stdin, in the format
// the flags and the file suffix resolve to. It returns the tree and
// the format it arrived in.
func readTree(cfg *MainConfig, cc *cli.Context, arg string) (*ptree.Node, format.Format, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(cc.In)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("could not read %q: %w", arg, err)
	}
	f := cfg.inFormat(arg)
	n, err := decodeTree(cfg, f, data)
	if err != nil {
		return nil, 0, fmt.Errorf("error decoding %s: %w", arg, err)
	}
	return n, f, nil
}

func decodeTree(cfg *MainConfig, f format.Format, data []byte) (*ptree.Node, error) {
	switch f {
	case format.JSONFormat:
		return json.Parse(data)
	case format.XMLFormat:
		var opts []xml.ParseOption
		if cfg.NoConcatText {
			opts = append(opts, xml.NoConcatText())
		}
		if cfg.NoComments {
			opts = append(opts, xml.NoComments())
		}
		if cfg.TrimWhitespace {
			opts = append(opts, xml.TrimWhitespace())
		}
		return xml.Parse(data, opts...)
	case format.INIFormat:
		return ini.Parse(data)
	case format.INFOFormat:
		return info.Parse(data)
	}
	return nil, fmt.Errorf("%w: %v", format.ErrBadFormat, f)
}

func writeTree(cfg *MainConfig, w io.Writer, n *ptree.Node, f format.Format) error {
	switch f {
	case format.JSONFormat:
		var opts []json.Option
		if cfg.Compact {
			opts = append(opts, json.Compact())
		}
		return json.Encode(w, n, opts...)
	case format.XMLFormat:
		var opts []xml.Option
		if !cfg.Compact {
			opts = append(opts, xml.Indent("  "))
		}
		return xml.Encode(w, n, opts...)
	case format.INIFormat:
		return ini.Encode(w, n)
	case format.INFOFormat:
		return info.Encode(w, n)
	}
	return fmt.Errorf("%w: %v", format.ErrBadFormat, f)
}
