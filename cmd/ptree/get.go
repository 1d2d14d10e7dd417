package main

import (
	"errors"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/eponymous/proptree/ptree"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a key path", cli.ErrUsage)
	}
	path := args[0]
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		if err := getArg(cfg, cc, arg, path); err != nil {
			return fmt.Errorf("error querying %s with %s: %w", arg, path, err)
		}
	}
	return nil
}

func getArg(cfg *GetConfig, cc *cli.Context, arg, path string) error {
	n, in, err := readTree(cfg.MainConfig, cc, arg)
	if err != nil {
		return err
	}
	res, err := n.Get(path)
	if err != nil {
		if errors.Is(err, ptree.ErrBadPath) && cfg.HasDef {
			_, err := fmt.Fprintln(cc.Out, cfg.Default)
			return err
		}
		return err
	}
	if res.Len() == 0 {
		_, err := fmt.Fprintln(cc.Out, res.Value())
		return err
	}
	return writeTree(cfg.MainConfig, cc.Out, res, cfg.outFormat(in))
}
