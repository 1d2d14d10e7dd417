package main

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/scott-cotton/cli"

	"github.com/eponymous/proptree/ptree"
	"github.com/eponymous/proptree/ptree/keypath"
)

// findEnv is the expression environment for one visited node.
type findEnv struct {
	Key      string `expr:"key"`
	Value    string `expr:"value"`
	Path     string `expr:"path"`
	Depth    int    `expr:"depth"`
	Children int    `expr:"children"`
}

func find(cfg *FindConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Find.Parse(cc, args)
	if err != nil {
		cfg.Find.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: find requires one argument, a predicate", cli.ErrUsage)
	}
	prg, err := expr.Compile(args[0], expr.Env(findEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("%w: bad predicate %q: %v", cli.ErrUsage, args[0], err)
	}
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		n, _, err := readTree(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		if err := findWalk(cfg, cc, prg, nil, n); err != nil {
			return fmt.Errorf("error searching %s: %w", arg, err)
		}
	}
	return nil
}

func findWalk(cfg *FindConfig, cc *cli.Context, prg *vm.Program, path []string, n *ptree.Node) error {
	for key, sub := range n.Items() {
		subPath := append(path, key)
		env := findEnv{
			Key:      key,
			Value:    sub.Value(),
			Path:     keypath.Join(subPath...),
			Depth:    len(subPath),
			Children: sub.Len(),
		}
		res, err := expr.Run(prg, env)
		if err != nil {
			return err
		}
		if res.(bool) {
			if cfg.Values {
				fmt.Fprintln(cc.Out, sub.Value())
			} else {
				fmt.Fprintln(cc.Out, env.Path)
			}
		}
		if err := findWalk(cfg, cc, prg, subPath, sub); err != nil {
			return err
		}
	}
	return nil
}
