// Package bundle moves snapshots between stores as a deterministic TAR
// archive.
//
// Layout:
//
//	snapshots/<cid>   raw snapshot bytes, one entry per CID
//	index.json        optional; snapshot sizes and tree names
//
// Entry order is lexicographic and headers are normalized, so exporting the
// same set of CIDs always yields the same bytes. Every entry is checked
// against its CID on both export and import.
package bundle

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/storage"
)

// FormatVersion is the index.json schema version.
const FormatVersion = 1

const (
	snapshotDir = "snapshots/"
	indexName   = "index.json"
)

var epoch0 = time.Unix(0, 0).UTC()

// CheckFunc inspects a snapshot's bytes after the CID check. A non-nil error
// aborts the export or import.
type CheckFunc func(id cid.Cid, b []byte) error

type ExportOptions struct {
	// Names maps human tree names to snapshot CIDs. Every named CID is
	// exported even if it is absent from the id list.
	Names map[string]cid.Cid
	// SkipIndex omits index.json.
	SkipIndex bool
	Check     CheckFunc
}

// Index is the decoded index.json.
type Index struct {
	Version   int        `json:"version"`
	Snapshots []Snapshot `json:"snapshots"`
	Names     []Name     `json:"names,omitempty"`
}

type Snapshot struct {
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type Name struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

// Export writes the snapshots for ids (and opts.Names) from cas to w.
func Export(w io.Writer, cas storage.CAS, ids []cid.Cid, opts ExportOptions) (err error) {
	if cas == nil {
		return errors.New("bundle: nil CAS")
	}

	uniq := make(map[string]cid.Cid, len(ids)+len(opts.Names))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	names := make([]Name, 0, len(opts.Names))
	for name, id := range opts.Names {
		if strings.TrimSpace(name) == "" {
			return errors.New("bundle: empty tree name")
		}
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
		names = append(names, Name{Name: name, CID: id.String()})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })

	keys := make([]string, 0, len(uniq))
	for k := range uniq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tar.NewWriter(w)
	defer func() {
		if cerr := tw.Close(); err == nil {
			err = cerr
		}
	}()

	idx := Index{Version: FormatVersion, Snapshots: make([]Snapshot, 0, len(keys)), Names: names}
	for _, k := range keys {
		id := uniq[k]
		b, err := cas.Get(id)
		if err != nil {
			return fmt.Errorf("bundle: export %s: %w", k, err)
		}
		if err := storage.CheckBytes(id, b); err != nil {
			return fmt.Errorf("bundle: export %s: %w", k, err)
		}
		if opts.Check != nil {
			if err := opts.Check(id, b); err != nil {
				return fmt.Errorf("bundle: export %s: %w", k, err)
			}
		}
		if err := writeEntry(tw, snapshotDir+k, b); err != nil {
			return err
		}
		idx.Snapshots = append(idx.Snapshots, Snapshot{CID: k, Size: len(b)})
	}

	if opts.SkipIndex {
		return nil
	}
	b, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return writeEntry(tw, indexName, append(b, '\n'))
}

type ImportOptions struct {
	// IgnoreUnknown skips entries outside the layout instead of failing.
	IgnoreUnknown bool
	Check         CheckFunc
}

// Import stores every snapshot in r into cas and returns the archive's index.
// Archives without index.json get an index built from the imported entries.
func Import(r io.Reader, cas storage.CAS, opts ImportOptions) (Index, error) {
	if cas == nil {
		return Index{}, errors.New("bundle: nil CAS")
	}

	var (
		tr       = tar.NewReader(r)
		seen     = map[string]int{}
		imported []Snapshot
		idx      *Index
	)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Index{}, err
		}
		name := cleanPath(h.Name)
		if name == "" {
			return Index{}, fmt.Errorf("bundle: invalid entry path %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return Index{}, fmt.Errorf("bundle: unexpected entry type %v (%s)", h.Typeflag, name)
		}

		switch {
		case name == indexName:
			var got Index
			dec := json.NewDecoder(tr)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&got); err != nil {
				return Index{}, fmt.Errorf("bundle: index.json: %w", err)
			}
			if got.Version != FormatVersion {
				return Index{}, fmt.Errorf("bundle: unsupported index version %d", got.Version)
			}
			idx = &got

		case strings.HasPrefix(name, snapshotDir):
			key := strings.TrimPrefix(name, snapshotDir)
			id, err := cid.Decode(key)
			if err != nil || !id.Defined() {
				return Index{}, storage.ErrInvalidCID
			}
			if _, dup := seen[id.String()]; dup {
				return Index{}, fmt.Errorf("bundle: duplicate snapshot %s", id)
			}
			b, err := io.ReadAll(tr)
			if err != nil {
				return Index{}, err
			}
			if err := storage.CheckBytes(id, b); err != nil {
				return Index{}, fmt.Errorf("bundle: import %s: %w", id, err)
			}
			if opts.Check != nil {
				if err := opts.Check(id, b); err != nil {
					return Index{}, fmt.Errorf("bundle: import %s: %w", id, err)
				}
			}
			got, err := cas.Put(b)
			if err != nil {
				return Index{}, fmt.Errorf("bundle: import %s: %w", id, err)
			}
			if !got.Equals(id) {
				return Index{}, storage.ErrCIDMismatch
			}
			seen[id.String()] = len(b)
			imported = append(imported, Snapshot{CID: id.String(), Size: len(b)})

		default:
			if !opts.IgnoreUnknown {
				return Index{}, fmt.Errorf("bundle: unknown entry %s", name)
			}
		}
	}

	if idx == nil {
		sort.Slice(imported, func(i, j int) bool { return imported[i].CID < imported[j].CID })
		return Index{Version: FormatVersion, Snapshots: imported}, nil
	}
	// The index is metadata; it may not name snapshots the archive lacks.
	for _, n := range idx.Names {
		if _, ok := seen[n.CID]; !ok {
			return Index{}, fmt.Errorf("bundle: name %q refers to missing snapshot %s", n.Name, n.CID)
		}
	}
	return *idx, nil
}

func writeEntry(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(content)
	return err
}

func cleanPath(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")
	if name == "" {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
