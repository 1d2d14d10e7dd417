package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func keys(cfg *KeysConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Keys.Parse(cc, args)
	if err != nil {
		cfg.Keys.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: keys requires one argument, a key path", cli.ErrUsage)
	}
	path := args[0]
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		n, _, err := readTree(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, err := n.Get(path)
		if err != nil {
			return fmt.Errorf("error querying %s with %s: %w", arg, path, err)
		}
		if cfg.Counts {
			seen := map[string]bool{}
			for key := range res.Items() {
				if seen[key] {
					continue
				}
				seen[key] = true
				fmt.Fprintf(cc.Out, "%s %d\n", key, res.Count(key))
			}
			continue
		}
		for _, key := range res.Keys() {
			fmt.Fprintln(cc.Out, key)
		}
	}
	return nil
}
