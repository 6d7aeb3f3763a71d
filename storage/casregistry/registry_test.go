package casregistry

import (
	"flag"
	"strings"
	"testing"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/testkit"
)

// fakeBackend registers a backend whose opener records the parsed flags.
func fakeBackend(t *testing.T, name string, usage Usage) *string {
	t.Helper()
	var last string
	if err := Register(Backend{
		Name:        name,
		Description: "test backend",
		Usage:       usage,
		Flags: func(fs *flag.FlagSet) OpenFunc {
			dir := fs.String(name+"-dir", "default", "directory")
			return func() (storage.CAS, func() error, error) {
				last = *dir
				return testkit.NewMemory(), nil, nil
			}
		},
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return &last
}

func TestRegisterValidation(t *testing.T) {
	if err := Register(Backend{}); err == nil {
		t.Fatalf("expected error for unnamed backend")
	}
	if err := Register(Backend{Name: "noflags", Usage: UsageCLI}); err == nil {
		t.Fatalf("expected error for backend without Flags")
	}
	fakeBackend(t, "dup", UsageCLI)
	if err := Register(Backend{Name: "dup", Usage: UsageCLI, Flags: func(*flag.FlagSet) OpenFunc { return nil }}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestOpenWithConfig(t *testing.T) {
	last := fakeBackend(t, "cfgfake", UsageDaemon)

	if _, _, err := OpenWithConfig("cfgfake", UsageDaemon, map[string]string{"cfgfake-dir": "/srv/cas"}); err != nil {
		t.Fatalf("OpenWithConfig: %v", err)
	}
	if *last != "/srv/cas" {
		t.Fatalf("config key not applied: %q", *last)
	}

	if _, _, err := OpenWithConfig("cfgfake", UsageDaemon, nil); err != nil || *last != "default" {
		t.Fatalf("expected defaults, got %q, %v", *last, err)
	}

	_, _, err := OpenWithConfig("cfgfake", UsageDaemon, map[string]string{"colour": "blue"})
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("expected unknown-key error, got %v", err)
	}

	if _, _, err := OpenWithConfig("cfgfake", UsageCLI, nil); err == nil {
		t.Fatalf("expected usage mismatch error")
	}
	if _, _, err := OpenWithConfig("nosuch", UsageCLI, nil); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestRegisterFlagsThenOpen(t *testing.T) {
	last := fakeBackend(t, "flagfake", UsageCLI)

	if _, _, err := Open("flagfake", UsageCLI); err == nil {
		t.Fatalf("Open before RegisterFlags must fail")
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, UsageCLI)
	if err := fs.Parse([]string{"-flagfake-dir", "/tmp/x"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Open("flagfake", UsageCLI); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if *last != "/tmp/x" {
		t.Fatalf("parsed flag not applied: %q", *last)
	}

	found := false
	for _, n := range Names(UsageCLI) {
		if n == "flagfake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Names missing flagfake")
	}
}
