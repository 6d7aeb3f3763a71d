package badgercas

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casregistry"
	"xdao.co/mycelium/storage/testkit"
)

func openMemory(t *testing.T) *CAS {
	t.Helper()
	cas, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cas.Close() })
	return cas
}

func TestBadger_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return openMemory(t)
	})
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cas, err := Open(Options{Dir: dir, SyncWrites: true, Logger: zaptest.NewLogger(t)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := cas.Put([]byte("durable snapshot"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cas.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(Options{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(id)
	if err != nil || string(got) != "durable snapshot" {
		t.Fatalf("Get after reopen = %q, %v", got, err)
	}
}

func TestBadger_Len(t *testing.T) {
	cas := openMemory(t)
	for _, s := range []string{"a", "b", "a"} {
		if _, err := cas.Put([]byte(s)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	n, err := cas.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
}

func TestBadger_RequiresDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error without Dir or InMemory")
	}
	if _, _, err := casregistry.OpenWithConfig("badger", casregistry.UsageDaemon, nil); err == nil {
		t.Fatalf("expected missing --badger-dir error")
	}
}

func TestBadger_OpenWithConfig(t *testing.T) {
	cas, closeFn, err := casregistry.OpenWithConfig("badger", casregistry.UsageCLI, map[string]string{"badger-in-memory": "true"})
	if err != nil {
		t.Fatalf("OpenWithConfig: %v", err)
	}
	defer closeFn()
	if _, err := cas.Put([]byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
}
