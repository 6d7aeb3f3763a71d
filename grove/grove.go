// Package grove persists mycelium trees as snapshots in a content-addressed
// store.
//
// A snapshot CID addresses the encoded document bytes, signatures included.
// It differs from Node.Hash, which covers the Merkle structure without
// signatures.
package grove

import (
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"xdao.co/mycelium/model"
	"xdao.co/mycelium/mycelium"
	"xdao.co/mycelium/storage"
)

// Grove reads and writes tree snapshots through a CAS.
type Grove struct {
	cas   storage.CAS
	log   *zap.Logger
	clock mycelium.Clock
}

// Option configures a Grove.
type Option func(*Grove)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(g *Grove) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock sets the clock given to every loaded tree.
func WithClock(c mycelium.Clock) Option {
	return func(g *Grove) { g.clock = c }
}

func New(cas storage.CAS, opts ...Option) *Grove {
	g := &Grove{cas: cas, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Put stores a snapshot of n and returns its CID.
func (g *Grove) Put(n *mycelium.Node) (cid.Cid, error) {
	if n == nil {
		return cid.Undef, model.NewError(model.ErrInvalidDocument, "nil node")
	}
	if g.cas == nil {
		return cid.Undef, model.NewError(model.ErrMissingCAS, "grove has no CAS")
	}
	b, err := model.Encode(n)
	if err != nil {
		return cid.Undef, err
	}
	id, err := g.cas.Put(b)
	if err != nil {
		g.log.Error("snapshot put failed", zap.Error(err))
		return cid.Undef, model.MapError(err)
	}
	g.log.Debug("snapshot stored", zap.Stringer("cid", id), zap.Int("bytes", len(b)))
	return id, nil
}

// Get loads the tree stored under id.
func (g *Grove) Get(id cid.Cid) (*mycelium.Node, error) {
	if g.cas == nil {
		return nil, model.NewError(model.ErrMissingCAS, "grove has no CAS")
	}
	if !id.Defined() {
		return nil, model.NewError(model.ErrInvalidCID, "undefined cid")
	}
	b, err := g.cas.Get(id)
	if err != nil {
		if !storage.IsNotFound(err) {
			g.log.Error("snapshot get failed", zap.Stringer("cid", id), zap.Error(err))
		}
		return nil, model.MapError(err)
	}
	var opts []mycelium.Option
	if g.clock != nil {
		opts = append(opts, mycelium.WithClock(g.clock))
	}
	n, err := model.Decode(b, opts...)
	if err != nil {
		g.log.Warn("snapshot undecodable", zap.Stringer("cid", id), zap.Error(err))
		return nil, err
	}
	return n, nil
}

// Update loads id, applies fn and stores the result. fn's error aborts the
// update without writing.
func (g *Grove) Update(id cid.Cid, fn func(*mycelium.Node) error) (cid.Cid, error) {
	n, err := g.Get(id)
	if err != nil {
		return cid.Undef, err
	}
	if err := fn(n); err != nil {
		return cid.Undef, err
	}
	return g.Put(n)
}

// Graft adds the tree stored under childID to the tree stored under parentID
// and stores the grown parent.
func (g *Grove) Graft(parentID, childID cid.Cid) (cid.Cid, error) {
	child, err := g.Get(childID)
	if err != nil {
		return cid.Undef, err
	}
	id, err := g.Update(parentID, func(parent *mycelium.Node) error {
		return parent.Add(child)
	})
	if err != nil {
		return cid.Undef, err
	}
	g.log.Info("grafted",
		zap.Stringer("parent", parentID),
		zap.Stringer("child", childID),
		zap.Stringer("result", id))
	return id, nil
}

// Prune prunes the tree stored under id, recursively when deep is set, and
// stores the result.
func (g *Grove) Prune(id cid.Cid, deep bool) (cid.Cid, mycelium.PruneReport, error) {
	var report mycelium.PruneReport
	out, err := g.Update(id, func(n *mycelium.Node) error {
		if deep {
			report = n.PruneDeep()
		} else {
			report = n.PruneWithReport()
		}
		return nil
	})
	if err != nil {
		return cid.Undef, mycelium.PruneReport{}, err
	}
	g.log.Info("pruned",
		zap.Stringer("tree", id),
		zap.Bool("deep", deep),
		zap.Int("dropped", report.Dropped),
		zap.Int("collapsed", report.Collapsed),
		zap.Stringer("result", out))
	return out, report, nil
}
