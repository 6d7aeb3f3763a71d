package localfs

import (
	"flag"
	"fmt"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem CAS (directory)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		Flags: func(fs *flag.FlagSet) casregistry.OpenFunc {
			dir := fs.String("localfs-dir", "", "LocalFS CAS directory (for --backend=localfs)")
			return func() (storage.CAS, func() error, error) {
				if *dir == "" {
					return nil, nil, fmt.Errorf("missing --localfs-dir")
				}
				cas, err := New(*dir)
				return cas, nil, err
			}
		},
	})
}
