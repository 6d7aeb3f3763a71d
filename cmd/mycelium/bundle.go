package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"
)

func (a *app) exportCommand() *cobra.Command {
	var (
		outPath string
		names   map[string]string
	)
	cmd := &cobra.Command{
		Use:   "export [cid...]",
		Short: "Write stored trees to a bundle archive",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(names) == 0 {
				return usagef("export needs at least one CID or --name")
			}
			ids := make([]cid.Cid, 0, len(args))
			for _, s := range args {
				id, err := parseCID("snapshot", s)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			named := make(map[string]cid.Cid, len(names))
			for name, s := range names {
				id, err := parseCID("--name "+name, s)
				if err != nil {
					return err
				}
				named[name] = id
			}

			g, err := a.openGrove()
			if err != nil {
				return err
			}
			if outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				if err := g.Export(f, named, ids...); err != nil {
					_ = f.Close()
					_ = os.Remove(outPath)
					return err
				}
				return f.Close()
			}
			return g.Export(a.out, named, ids...)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Bundle file to write; - for stdout")
	cmd.Flags().StringToStringVar(&names, "name", nil, "Record a tree name in the bundle index (name=cid, repeatable)")
	return cmd
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <bundle>",
		Short: "Store every tree of a bundle archive",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			idx, err := g.Import(r)
			if err != nil {
				return err
			}
			for _, s := range idx.Snapshots {
				fmt.Fprintln(a.out, s.CID)
			}
			for _, n := range idx.Names {
				fmt.Fprintf(a.errOut, "%s\t%s\n", n.Name, n.CID)
			}
			return nil
		},
	}
}
