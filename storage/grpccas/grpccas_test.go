package grpccas

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/mycelium/cidutil"
	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/localfs"
	"xdao.co/mycelium/storage/testkit"
)

// serve starts a bufconn gRPC server over backend and returns a client.
func serve(t *testing.T, backend storage.CAS) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCASServer(srv, &Server{CAS: backend, Logger: zaptest.NewLogger(t)})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
	cc, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client := NewClient(cc)
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGRPCCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return serve(t, testkit.NewMemory())
	})
}

func TestGRPCCAS_LocalFS_RoundTrip(t *testing.T) {
	cas, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	client := serve(t, cas)

	payload := []byte("hello grpccas")
	id, err := client.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := client.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

// corruptCAS returns the wrong bytes for every Get.
type corruptCAS struct{ storage.CAS }

func (c corruptCAS) Get(cid.Cid) ([]byte, error) { return []byte("tampered"), nil }

func TestGRPCCAS_ErrorMapping(t *testing.T) {
	client := serve(t, corruptCAS{CAS: testkit.NewMemory()})

	id, err := cidutil.CIDv1RawSHA256CID([]byte("original"))
	if err != nil {
		t.Fatalf("CIDv1RawSHA256CID: %v", err)
	}
	if _, err := client.Get(id); !errors.Is(err, storage.ErrCIDMismatch) {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}

	missing := serve(t, testkit.NewMemory())
	if _, err := missing.Get(id); !storage.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := missing.client.Get(context.Background(), wrapperspb.String("")); !errors.Is(mapRPC(err), storage.ErrInvalidCID) {
		t.Fatalf("expected ErrInvalidCID for an empty CID, got %v", err)
	}
}
