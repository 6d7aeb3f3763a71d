// Command mycelium grows, signs, verifies and prunes provenance trees stored
// in a content-addressed store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"xdao.co/mycelium/grove"
	"xdao.co/mycelium/keys"
	"xdao.co/mycelium/mycelium"
	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casconfig"
	"xdao.co/mycelium/storage/casregistry"

	_ "xdao.co/mycelium/storage/badgercas"
	_ "xdao.co/mycelium/storage/grpccas"
	_ "xdao.co/mycelium/storage/ipfs"
	_ "xdao.co/mycelium/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errNotFound reports a negative scan result; it exits 1 without a message.
var errNotFound = errors.New("not found")

// usageError marks errors that exit with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("%s: expected %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.closeCAS != nil {
		if cerr := a.closeCAS(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, errNotFound) {
		return 1
	}
	if rule := mycelium.RuleID(err); rule != "" {
		fmt.Fprintf(errOut, "mycelium: %s: %v\n", rule, err)
	} else {
		fmt.Fprintf(errOut, "mycelium: %v\n", err)
	}
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// app holds state shared by all subcommands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	backend   string
	casConfig string
	keysDir   string
	logLevel  string
	registry  *flag.FlagSet

	log      *zap.Logger
	closeCAS func() error
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mycelium",
		Short: "Provenance trees of spore-signed nodes",
		Long: `mycelium records who created what, and what was grown from what.

Each node carries the sporeprint of the spore that created it, a creation
moment and an optional signature over the Merkle hash of its subtree. Trees are
stored as immutable snapshots in a content-addressed store; every mutating
command prints the CID of the new snapshot on stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.backend, "backend", "localfs", "CAS backend name (see 'mycelium backends')")
	pf.StringVar(&a.casConfig, "cas-config", "", "YAML file describing one or more CAS backends; overrides --backend")
	pf.StringVar(&a.keysDir, "keys-dir", "", "Key store directory (default ~/.mycelium/keys)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	a.registry = flag.NewFlagSet("mycelium", flag.ContinueOnError)
	casregistry.RegisterFlags(a.registry, casregistry.UsageCLI)
	pf.AddGoFlagSet(a.registry)

	root.AddCommand(
		a.sporeCommand(),
		a.growCommand(),
		a.graftCommand(),
		a.signCommand(),
		a.verifyCommand(),
		a.scanCommand(),
		a.pruneCommand(),
		a.hashCommand(),
		a.showCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.backendsCommand(),
	)
	return root
}

func (a *app) setupLogger() error {
	level, err := zapcore.ParseLevel(a.logLevel)
	if err != nil {
		return usagef("invalid --log-level: %v", err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(a.errOut), level)
	a.log = zap.New(core).Named("mycelium")
	return nil
}

// openGrove opens the configured CAS once per invocation.
func (a *app) openGrove() (*grove.Grove, error) {
	var (
		cas     storage.CAS
		closeFn func() error
		err     error
	)
	if a.casConfig != "" {
		cfg, lerr := casconfig.LoadFile(a.casConfig)
		if lerr != nil {
			return nil, lerr
		}
		cas, closeFn, err = cfg.Open(casregistry.UsageCLI, "", nil)
	} else {
		if err := a.defaultLocalDir(); err != nil {
			return nil, err
		}
		cas, closeFn, err = casregistry.Open(a.backend, casregistry.UsageCLI)
	}
	if err != nil {
		return nil, err
	}
	a.closeCAS = closeFn
	a.log.Debug("cas opened", zap.String("backend", a.backend), zap.String("config", a.casConfig))
	return grove.New(cas, grove.WithLogger(a.log)), nil
}

// defaultLocalDir points localfs at ~/.mycelium/cas unless a directory was given.
func (a *app) defaultLocalDir() error {
	if a.backend != "localfs" {
		return nil
	}
	f := a.registry.Lookup("localfs-dir")
	if f == nil || f.Value.String() != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return f.Value.Set(filepath.Join(home, ".mycelium", "cas"))
}

func (a *app) keyStore() (*keys.KeyStore, error) {
	return keys.OpenKeyStore(a.keysDir)
}

func (a *app) backendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the CAS backends linked into this binary",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range casregistry.List(casregistry.UsageCLI) {
				fmt.Fprintf(a.out, "%s\t%s\n", b.Name, b.Description)
			}
			return nil
		},
	}
}
