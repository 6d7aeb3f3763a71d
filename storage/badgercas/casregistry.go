package badgercas

import (
	"flag"
	"fmt"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "badger",
		Description: "Embedded BadgerDB CAS (directory or in-memory)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		Flags: func(fs *flag.FlagSet) casregistry.OpenFunc {
			var opts Options
			fs.StringVar(&opts.Dir, "badger-dir", "", "BadgerDB directory (for --backend=badger)")
			fs.BoolVar(&opts.InMemory, "badger-in-memory", false, "Keep the BadgerDB CAS in memory (for --backend=badger)")
			fs.BoolVar(&opts.SyncWrites, "badger-sync-writes", false, "fsync every BadgerDB write (for --backend=badger)")
			return func() (storage.CAS, func() error, error) {
				if opts.Dir == "" && !opts.InMemory {
					return nil, nil, fmt.Errorf("missing --badger-dir")
				}
				cas, err := Open(opts)
				if err != nil {
					return nil, nil, err
				}
				return cas, cas.Close, nil
			}
		},
	})
}
