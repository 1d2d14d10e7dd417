package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/eponymous/proptree/treediff"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, _, err := readTree(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	b, _, err := readTree(cfg.MainConfig, cc, args[1])
	if err != nil {
		return err
	}
	if cfg.Reverse {
		a, b = b, a
	}
	changes := treediff.Diff(a, b)
	if len(changes) == 0 {
		return nil
	}
	if useColor(cfg.MainConfig, cc.Out) {
		for _, c := range changes {
			if _, err := changeColor(c.Op).Fprintln(cc.Out, c.String()); err != nil {
				return err
			}
		}
	} else {
		if _, err := cc.Out.Write([]byte(treediff.Render(changes))); err != nil {
			return err
		}
	}
	return cli.ExitCodeErr(1)
}

func changeColor(op treediff.Op) *color.Color {
	switch op {
	case treediff.OpInsert:
		return color.New(color.FgGreen)
	case treediff.OpDelete:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
