package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/mycelium/keys"
	"xdao.co/mycelium/spore"
	"xdao.co/mycelium/spore/didkey"
	"xdao.co/mycelium/spore/dilithium"
)

// signerFlags selects the seed and scheme of the acting spore.
type signerFlags struct {
	seedHex string
	name    string
	role    string
	keyFile string
	scheme  string
}

func (s *signerFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.seedHex, "seed-hex", "", "Spore seed as 64 hex chars")
	f.StringVar(&s.name, "signer", "", "Stored key name")
	f.StringVar(&s.role, "signer-role", "", "Role derived from --signer")
	f.StringVar(&s.keyFile, "key-file", "", "File holding a hex seed")
	f.StringVar(&s.scheme, "scheme", didkey.SchemeName, "Spore scheme: did:key or dilithium3")
}

func (a *app) loadSpore(s signerFlags) (spore.Spore, error) {
	if s.seedHex == "" && s.name == "" && s.keyFile == "" {
		return nil, usagef("one of --seed-hex, --signer or --key-file is required")
	}
	ks, err := a.keyStore()
	if err != nil {
		return nil, err
	}
	seed, err := ks.LoadSeed(s.seedHex, s.name, s.role, s.keyFile)
	if err != nil {
		return nil, err
	}
	return sporeFromSeed(s.scheme, seed)
}

func sporeFromSeed(scheme string, seed []byte) (spore.Spore, error) {
	switch scheme {
	case didkey.SchemeName:
		return didkey.FromSeed(seed)
	case dilithium.SchemeName:
		return dilithium.FromSeed(seed)
	default:
		return nil, usagef("unknown --scheme %q (have: did:key, dilithium3)", scheme)
	}
}

func (a *app) sporeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spore",
		Short: "Manage local spore seeds (KMS-lite)",
		Long: `Seeds live under --keys-dir as <name>/root.key and <name>/roles/<role>.key,
hex encoded, mode 0600. Role seeds are derived from the root seed, so a root
seed is enough to recreate every role.`,
	}
	cmd.AddCommand(a.sporeInitCommand(), a.sporeDeriveCommand(), a.sporeListCommand(), a.sporeExportCommand())
	return cmd
}

func (a *app) sporeInitCommand() *cobra.Command {
	var name, seedHex string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a root seed",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keys.CheckName(name); err != nil {
				return usagef("invalid --name: %v", err)
			}
			var seed []byte
			if seedHex != "" {
				var err error
				if seed, err = keys.ParseSeedHex(seedHex); err != nil {
					return usagef("invalid --seed-hex: %v", err)
				}
			} else {
				seed = make([]byte, ed25519.SeedSize)
				if _, err := rand.Read(seed); err != nil {
					return fmt.Errorf("rand: %w", err)
				}
			}
			ks, err := a.keyStore()
			if err != nil {
				return err
			}
			sp, path, err := ks.Init(name, seed, force)
			if err != nil {
				return fmt.Errorf("write key: %w", err)
			}
			fmt.Fprintf(a.out, "Created spore: %s\n", sp)
			fmt.Fprintf(a.out, "Stored at: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Key name")
	cmd.Flags().StringVar(&seedHex, "seed-hex", "", "Optional seed as 64 hex chars (for reproducible demos)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing key files")
	return cmd
}

func (a *app) sporeDeriveCommand() *cobra.Command {
	var from, role string
	var force bool
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a role seed from a root seed",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keys.CheckName(from); err != nil {
				return usagef("invalid --from: %v", err)
			}
			if err := keys.CheckRole(role); err != nil {
				return usagef("invalid --role: %v", err)
			}
			ks, err := a.keyStore()
			if err != nil {
				return err
			}
			sp, path, err := ks.Derive(from, role, force)
			if err != nil {
				return fmt.Errorf("derive role key: %w", err)
			}
			fmt.Fprintf(a.out, "Created role spore: %s\n", sp)
			fmt.Fprintf(a.out, "Stored at: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Root key name")
	cmd.Flags().StringVar(&role, "role", "", "Role identifier (e.g. author, reviewer)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing key files")
	return cmd
}

func (a *app) sporeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored seeds and their roles",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.keyStore()
			if err != nil {
				return err
			}
			entries, err := ks.List()
			if err != nil {
				return fmt.Errorf("list keys: %w", err)
			}
			for _, e := range entries {
				fmt.Fprintln(a.out, e.Name)
				for _, r := range e.Roles {
					fmt.Fprintf(a.out, "  - %s\n", r)
				}
			}
			return nil
		},
	}
}

func (a *app) sporeExportCommand() *cobra.Command {
	var name, role, scheme string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the sporeprint of a stored seed",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSpore(signerFlags{name: name, role: role, scheme: scheme})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, s.Sporeprint())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Key name")
	cmd.Flags().StringVar(&role, "role", "", "Optional role (exports the derived role spore)")
	cmd.Flags().StringVar(&scheme, "scheme", didkey.SchemeName, "Spore scheme: did:key or dilithium3")
	return cmd
}
