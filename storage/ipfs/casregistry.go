package ipfs

import (
	"flag"
	"time"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "ipfs",
		Description: "Local IPFS repository via the Kubo CLI (offline)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		Flags: func(fs *flag.FlagSet) casregistry.OpenFunc {
			var opts Options
			fs.StringVar(&opts.Bin, "ipfs-bin", "ipfs", "Path to the ipfs binary (for --backend=ipfs)")
			fs.DurationVar(&opts.Timeout, "ipfs-timeout", 30*time.Second, "Per-command timeout (for --backend=ipfs)")
			return func() (storage.CAS, func() error, error) {
				return New(opts), nil, nil
			}
		},
	})
}
