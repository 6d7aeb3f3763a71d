package main

import (
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xdao.co/mycelium/model"
	"xdao.co/mycelium/mycelium"
	"xdao.co/mycelium/spore"
)

func parseCID(what, s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, usagef("invalid %s CID %q: %v", what, s, err)
	}
	return id, nil
}

func (a *app) growCommand() *cobra.Command {
	var signer signerFlags
	var sign bool
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Create a new single-node tree stamped with the signer's origin",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSpore(signer)
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			n, err := mycelium.New(s)
			if err != nil {
				return err
			}
			if sign {
				if err := n.Sign(s); err != nil {
					return err
				}
			}
			id, err := g.Put(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}
	signer.register(cmd)
	cmd.Flags().BoolVar(&sign, "sign", false, "Sign the new node")
	return cmd
}

func (a *app) graftCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graft <parent-cid> <child-cid>",
		Short: "Add a stored tree as a child of another stored tree",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := parseCID("parent", args[0])
			if err != nil {
				return err
			}
			child, err := parseCID("child", args[1])
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			id, err := g.Graft(parent, child)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}
}

func (a *app) signCommand() *cobra.Command {
	var signer signerFlags
	cmd := &cobra.Command{
		Use:   "sign <cid>",
		Short: "Sign the Merkle hash of a stored tree",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCID("tree", args[0])
			if err != nil {
				return err
			}
			s, err := a.loadSpore(signer)
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			out, err := g.Update(id, func(n *mycelium.Node) error { return n.Sign(s) })
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	signer.register(cmd)
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	var sporeprint string
	cmd := &cobra.Command{
		Use:   "verify <cid>",
		Short: "Verify a stored tree's signature",
		Long: `Verifies the root signature against a freshly computed Merkle hash.

Without --sporeprint the tree's own OriginSpore is resolved and used.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCID("tree", args[0])
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			n, err := g.Get(id)
			if err != nil {
				return err
			}
			if sporeprint == "" {
				err = n.VerifyOrigin()
			} else {
				var s spore.Spore
				if s, err = spore.Resolve(spore.Sporeprint(sporeprint)); err != nil {
					return usagef("invalid --sporeprint: %v", err)
				}
				err = n.Verify(s)
			}
			if err != nil {
				a.log.Info("verification failed", zap.Stringer("cid", id), zap.String("rule", mycelium.RuleID(err)))
				return err
			}
			fmt.Fprintln(a.out, "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&sporeprint, "sporeprint", "", "Verify against this sporeprint instead of the tree's origin")
	return cmd
}

func (a *app) scanCommand() *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "scan <cid> <sporeprint>",
		Short: "Search a stored tree for a descendant with the given origin",
		Long: `Prints "found <depth>" and exits 0 on a hit, or prints "not found" and exits 1.

--max-depth 1 checks direct children only; 0 never matches. A negative depth
searches without limit and reports depth -1.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCID("tree", args[0])
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			n, err := g.Get(id)
			if err != nil {
				return err
			}
			depth, found := n.Scan(spore.Sporeprint(args[1]), maxDepth)
			if !found {
				fmt.Fprintln(a.out, "not found")
				return errNotFound
			}
			fmt.Fprintf(a.out, "found %d\n", depth)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", mycelium.Unbounded, "Search depth budget; negative is unbounded")
	return cmd
}

func (a *app) pruneCommand() *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:   "prune <cid>",
		Short: "Drop origin-less children and collapse older duplicates into references",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCID("tree", args[0])
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			out, report, err := g.Prune(id, deep)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.errOut, "dropped=%d collapsed=%d\n", report.Dropped, report.Collapsed)
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "Prune every surviving owned subtree too")
	return cmd
}

func (a *app) hashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <cid>",
		Short: "Print the Merkle hash of a stored tree (the signed value)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCID("tree", args[0])
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			n, err := g.Get(id)
			if err != nil {
				return err
			}
			h, err := n.Hash()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, h)
			return nil
		},
	}
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <cid>",
		Short: "Print a stored tree as indented JSON",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCID("tree", args[0])
			if err != nil {
				return err
			}
			g, err := a.openGrove()
			if err != nil {
				return err
			}
			n, err := g.Get(id)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(model.FromNode(n), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(b))
			return nil
		},
	}
}
