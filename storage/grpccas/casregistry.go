package grpccas

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "grpc",
		Description: "gRPC CAS client (talks to mycelium-casgrpcd)",
		Usage:       casregistry.UsageCLI,
		Flags: func(fs *flag.FlagSet) casregistry.OpenFunc {
			target := fs.String("grpc-target", "", "gRPC target host:port (for --backend=grpc)")
			dialTimeout := fs.Duration("grpc-dial-timeout", 5*time.Second, "Dial timeout (for --backend=grpc)")
			timeout := fs.Duration("grpc-timeout", 0, "Per-RPC timeout (for --backend=grpc)")
			maxMsg := fs.Int("grpc-max-msg-bytes", 0, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
			return func() (storage.CAS, func() error, error) {
				t := strings.TrimSpace(*target)
				if t == "" {
					return nil, nil, fmt.Errorf("missing --grpc-target")
				}
				client, err := Dial(t, DialOptions{Timeout: *dialTimeout, MaxMsgBytes: *maxMsg})
				if err != nil {
					return nil, nil, err
				}
				client.Timeout = *timeout
				return client, client.Close, nil
			}
		},
	})
}
