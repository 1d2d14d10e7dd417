package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		cfg.Convert.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		n, in, err := readTree(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		if err := writeTree(cfg.MainConfig, cc.Out, n, cfg.outFormat(in)); err != nil {
			return fmt.Errorf("error converting %s: %w", arg, err)
		}
	}
	return nil
}
