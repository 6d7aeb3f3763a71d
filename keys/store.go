package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a local-first store of Ed25519 spore seeds.
//
// EXPERIMENTAL: this filesystem-backed surface may change in MINOR releases.
//
// Layout:
//
//	<Directory>/<name>/root.key
//	<Directory>/<name>/roles/<role>.key
//
// Each file holds a hex seed followed by a newline and is created 0600.
type KeyStore struct {
	Directory string
}

// KeyEntry lists one root key and the roles derived from it.
type KeyEntry struct {
	Name  string
	Roles []string
}

func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".mycelium", "keys"), nil
}

// OpenKeyStore returns a KeyStore rooted at directory, or at DefaultDirectory
// when directory is empty. Nothing is created until a key is written.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootPath(name string) string {
	return filepath.Join(ks.Directory, name, "root.key")
}

func (ks *KeyStore) rolePath(name, role string) string {
	return filepath.Join(ks.Directory, name, "roles", role+".key")
}

func checkToken(what, s string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in %s", char, what)
	}
	return nil
}

func CheckName(name string) error { return checkToken("name", name) }

func CheckRole(role string) error { return checkToken("role", role) }

func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func writeSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func readSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(data))
}

// Init stores seed as the root key of name and returns its sporeprint.
func (ks *KeyStore) Init(name string, seed []byte, overwrite bool) (sporeprint string, path string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	path = ks.rootPath(name)
	if err := writeSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	sporeprint, err = SporeprintFromSeed(seed)
	return sporeprint, path, err
}

// Derive stores a role seed derived from name's root key and returns its sporeprint.
func (ks *KeyStore) Derive(name, role string, overwrite bool) (sporeprint string, path string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootSeed, err := readSeed(ks.rootPath(name))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	path = ks.rolePath(name, role)
	if err := writeSeed(path, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	sporeprint, err = SporeprintFromSeed(roleSeed)
	return sporeprint, path, err
}

// Seed loads the seed for name, or for one of its roles when role is non-empty.
func (ks *KeyStore) Seed(name, role string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if role == "" {
		return readSeed(ks.rootPath(name))
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	return readSeed(ks.rolePath(name, role))
}

// Export returns the sporeprint for name (and role, when non-empty).
func (ks *KeyStore) Export(name, role string) (string, error) {
	seed, err := ks.Seed(name, role)
	if err != nil {
		return "", err
	}
	return SporeprintFromSeed(seed)
}

// LoadSeed resolves a signer from the first non-empty source: a hex seed,
// a key file, or a stored name (and optional role).
func (ks *KeyStore) LoadSeed(seedHex, name, role, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return readSeed(keyFile)
	}
	if name != "" {
		return ks.Seed(name, role)
	}
	return nil, errors.New("no signer provided")
}

// List returns stored names and their roles, both sorted.
func (ks *KeyStore) List() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []KeyEntry
	for _, name := range names {
		roleEntries, rerr := os.ReadDir(filepath.Join(ks.Directory, name, "roles"))
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, KeyEntry{Name: name, Roles: roles})
	}
	return result, nil
}
