package keys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeyStoreInitDeriveExport(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed := make([]byte, 32)
	seed[0] = 1

	rootSP, path, err := ks.Init("alice", seed, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 key file, got %v", info.Mode().Perm())
	}
	if _, _, err := ks.Init("alice", seed, false); err == nil {
		t.Fatalf("expected Init without overwrite to refuse an existing key")
	}

	roleSP, _, err := ks.Derive("alice", "grower", false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if roleSP == rootSP {
		t.Fatalf("role sporeprint must differ from root")
	}

	got, err := ks.Export("alice", "")
	if err != nil {
		t.Fatalf("Export root: %v", err)
	}
	if got != rootSP {
		t.Fatalf("Export root: got %q want %q", got, rootSP)
	}
	got, err = ks.Export("alice", "grower")
	if err != nil {
		t.Fatalf("Export role: %v", err)
	}
	if got != roleSP {
		t.Fatalf("Export role: got %q want %q", got, roleSP)
	}

	entries, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "alice" || len(entries[0].Roles) != 1 || entries[0].Roles[0] != "grower" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestKeyStoreLoadSeedSources(t *testing.T) {
	dir := t.TempDir()
	ks := &KeyStore{Directory: dir}

	hexSeed := "0x" + "11223344556677881122334455667788" + "11223344556677881122334455667788"
	seed, err := ks.LoadSeed(hexSeed, "", "", "")
	if err != nil {
		t.Fatalf("LoadSeed hex: %v", err)
	}
	if len(seed) != 32 {
		t.Fatalf("unexpected seed length %d", len(seed))
	}

	keyFile := filepath.Join(dir, "loose.key")
	if err := os.WriteFile(keyFile, []byte(hexSeed[2:]+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fromFile, err := ks.LoadSeed("", "", "", keyFile)
	if err != nil {
		t.Fatalf("LoadSeed file: %v", err)
	}
	if string(fromFile) != string(seed) {
		t.Fatalf("file seed mismatch")
	}

	if _, err := ks.LoadSeed("", "", "", ""); err == nil {
		t.Fatalf("expected error without a signer")
	}
	if _, err := ks.LoadSeed("", "../escape", "", ""); err == nil {
		t.Fatalf("expected invalid name to be rejected")
	}
}

func TestKeyStoreListMissingDirectory(t *testing.T) {
	ks := &KeyStore{Directory: filepath.Join(t.TempDir(), "absent")}
	entries, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}
