package grove

import (
	"io"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"xdao.co/mycelium/model"
	"xdao.co/mycelium/storage/bundle"
)

// checkSnapshot rejects bundle entries that do not decode as trees.
func checkSnapshot(_ cid.Cid, b []byte) error {
	_, err := model.Decode(b)
	return err
}

// Export writes the snapshots ids, plus any named ones, to w as a bundle.
func (g *Grove) Export(w io.Writer, names map[string]cid.Cid, ids ...cid.Cid) error {
	if g.cas == nil {
		return model.NewError(model.ErrMissingCAS, "grove has no CAS")
	}
	err := bundle.Export(w, g.cas, ids, bundle.ExportOptions{Names: names, Check: checkSnapshot})
	if err != nil {
		return model.MapError(err)
	}
	g.log.Info("exported", zap.Int("snapshots", len(ids)), zap.Int("names", len(names)))
	return nil
}

// Import stores every snapshot of the bundle in r. Nothing after the first
// undecodable snapshot is stored.
func (g *Grove) Import(r io.Reader) (bundle.Index, error) {
	if g.cas == nil {
		return bundle.Index{}, model.NewError(model.ErrMissingCAS, "grove has no CAS")
	}
	idx, err := bundle.Import(r, g.cas, bundle.ImportOptions{Check: checkSnapshot})
	if err != nil {
		return bundle.Index{}, model.MapError(err)
	}
	g.log.Info("imported", zap.Int("snapshots", len(idx.Snapshots)), zap.Int("names", len(idx.Names)))
	return idx, nil
}
