package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/eponymous/proptree/format"
	"github.com/eponymous/proptree/info"
	"github.com/eponymous/proptree/ptree"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for i, arg := range args {
		n, in, err := readTree(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := cc.Out.Write([]byte("\n")); err != nil {
				return err
			}
		}
		out := cfg.outFormat(in)
		if out == format.INFOFormat && useColor(cfg.MainConfig, cc.Out) {
			if err := viewColor(cc.Out, n); err != nil {
				return fmt.Errorf("error rendering %s: %w", arg, err)
			}
			continue
		}
		if err := writeTree(cfg.MainConfig, cc.Out, n, out); err != nil {
			return fmt.Errorf("error rendering %s: %w", arg, err)
		}
	}
	return nil
}

func useColor(cfg *MainConfig, w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

var (
	keyColor = color.New(color.FgCyan)
	valColor = color.New(color.FgGreen)
)

// viewColor renders the tree in the INFO layout with colored keys and
// values.
func viewColor(w io.Writer, n *ptree.Node) error {
	if n.Value() != "" {
		return fmt.Errorf("cannot render: root node carries a value")
	}
	for key, sub := range n.Items() {
		if err := viewColorNode(w, key, sub, 0); err != nil {
			return err
		}
	}
	return nil
}

func viewColorNode(w io.Writer, key string, n *ptree.Node, depth int) error {
	for i := 0; i < depth; i++ {
		if _, err := io.WriteString(w, "    "); err != nil {
			return err
		}
	}
	if _, err := keyColor.Fprint(w, info.Quote(key)); err != nil {
		return err
	}
	if n.Value() != "" {
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if _, err := valColor.Fprint(w, info.Quote(n.Value())); err != nil {
			return err
		}
	}
	if n.Len() == 0 {
		_, err := io.WriteString(w, "\n")
		return err
	}
	if _, err := io.WriteString(w, " {\n"); err != nil {
		return err
	}
	for k, sub := range n.Items() {
		if err := viewColorNode(w, k, sub, depth+1); err != nil {
			return err
		}
	}
	for i := 0; i < depth; i++ {
		if _, err := io.WriteString(w, "    "); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
