package grove

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/model"
	"xdao.co/mycelium/mycelium"
	"xdao.co/mycelium/storage/testkit"
)

func TestExportImport(t *testing.T) {
	g, _, logs, clock := newGrove(t)
	s := newSpore(t, 3)
	root, err := mycelium.New(s, mycelium.WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := root.Sign(s); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	id := mustPut(t, g, root)

	var buf bytes.Buffer
	if err := g.Export(&buf, map[string]cid.Cid{"main": id}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := New(testkit.NewMemory())
	idx, err := dst.Import(&buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(idx.Names) != 1 || idx.Names[0].CID != id.String() {
		t.Fatalf("unexpected index %+v", idx)
	}
	got, err := dst.Get(id)
	if err != nil {
		t.Fatalf("Get after import: %v", err)
	}
	if err := got.VerifyOrigin(); err != nil {
		t.Fatalf("imported tree no longer verifies: %v", err)
	}
	if logs.FilterMessage("exported").Len() != 1 {
		t.Fatalf("expected an export log entry")
	}
}

func TestExportRejectsForeignBlobs(t *testing.T) {
	g, mem, _, _ := newGrove(t)
	id, err := mem.Put([]byte("not json"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	var buf bytes.Buffer
	err = g.Export(&buf, nil, id)
	if model.Code(err) != model.ErrInvalidDocument {
		t.Fatalf("expected %s, got %v", model.ErrInvalidDocument, err)
	}
}
