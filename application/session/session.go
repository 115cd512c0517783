// Package session is the client-side owner of a family tree. It holds the
// one in-memory copy, applies user actions to it and keeps the server in
// step through a persist.Scheduler.
//
// Updates are optimistic: the in-memory tree changes first and a failed
// write is logged, never rolled back. A session that loses its connection
// keeps working and diverges from the server until the next successful write.
package session

import (
	"context"
	"fmt"
	"io"
	"iter"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/stoat/Mewton-family-tree/application/persist"
	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/application/viewmodel"
	"github.com/stoat/Mewton-family-tree/domain/tree"

	"go.uber.org/zap"
)

// spawnArea bounds the random position given to a new person.
const spawnArea = 200

// Session owns a tree for one client.
type Session struct {
	scheduler *persist.Scheduler
	logger    *zap.Logger
	random    func() float64

	mu   sync.RWMutex
	tree tree.Tree
}

// Open loads the tree from remote and starts a session over it.
func Open(ctx context.Context, remote ports.TreeRemote, window time.Duration, logger *zap.Logger, opts ...persist.Option) (*Session, error) {
	t, err := remote.LoadTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	return New(t, remote, window, logger, opts...), nil
}

// New starts a session over an already loaded tree.
func New(t tree.Tree, saver ports.TreeSaver, window time.Duration, logger *zap.Logger, opts ...persist.Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		scheduler: persist.NewScheduler(saver, window, logger, opts...),
		logger:    logger,
		random:    rand.Float64,
		tree:      t,
	}
}

// Tree returns the current in-memory tree.
func (s *Session) Tree() tree.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// update replaces the tree with fn's result and schedules a write. The
// previous tree is kept when fn fails.
func (s *Session) update(fn func(tree.Tree) (tree.Tree, error)) error {
	s.mu.Lock()
	next, err := fn(s.tree)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tree = next
	s.mu.Unlock()

	s.scheduler.Schedule(next)
	return nil
}

// AddPerson creates a person with empty details at a random spot near the
// origin of the canvas.
func (s *Session) AddPerson(displayName string) (tree.Person, error) {
	p := tree.NewPerson(displayName)
	p.X = s.random() * spawnArea
	p.Y = s.random() * spawnArea

	err := s.update(func(t tree.Tree) (tree.Tree, error) { return t.AddPerson(p) })
	if err != nil {
		return tree.Person{}, err
	}
	return p, nil
}

// EditPerson applies the edit form to a person.
func (s *Session) EditPerson(id string, edit tree.PersonEdit) error {
	return s.update(func(t tree.Tree) (tree.Tree, error) { return t.UpdatePerson(id, edit) })
}

// RemovePerson deletes a person. Their relationships stay behind.
func (s *Session) RemovePerson(id string) error {
	return s.update(func(t tree.Tree) (tree.Tree, error) { return t.RemovePerson(id) })
}

// Move sets a person's canvas position.
func (s *Session) Move(id string, x, y float64) error {
	return s.update(func(t tree.Tree) (tree.Tree, error) { return t.MovePerson(id, x, y) })
}

// AddRelationship links two people. Neither has to exist.
func (s *Session) AddRelationship(typ tree.RelationType, from, to string) (tree.Relationship, error) {
	r := tree.NewRelationship(typ, from, to)
	err := s.update(func(t tree.Tree) (tree.Tree, error) { return t.AddRelationship(r) })
	if err != nil {
		return tree.Relationship{}, err
	}
	return r, nil
}

// RemoveRelationship deletes exactly one relationship.
func (s *Session) RemoveRelationship(id string) error {
	return s.update(func(t tree.Tree) (tree.Tree, error) { return t.RemoveRelationship(id) })
}

// SetTitle renames the tree.
func (s *Session) SetTitle(title string) error {
	return s.update(func(t tree.Tree) (tree.Tree, error) { return t.WithTitle(title), nil })
}

// OnNodesChange folds a batch of canvas node changes into the tree.
// Selection-only batches change nothing that is persisted.
func (s *Session) OnNodesChange(changes []viewmodel.NodeChange) {
	if !viewmodel.Structural(changes) {
		return
	}
	_ = s.update(func(t tree.Tree) (tree.Tree, error) {
		return viewmodel.ReconcileNodes(t, changes), nil
	})
}

// OnEdgesChange folds a batch of canvas edge changes into the tree.
func (s *Session) OnEdgesChange(changes []viewmodel.EdgeChange) {
	if !viewmodel.StructuralEdges(changes) {
		return
	}
	_ = s.update(func(t tree.Tree) (tree.Tree, error) {
		return viewmodel.ReconcileEdges(t, changes), nil
	})
}

// Nodes renders the current tree for the canvas.
func (s *Session) Nodes() []viewmodel.Node {
	return viewmodel.Nodes(s.Tree())
}

// Edges renders the current tree for the canvas.
func (s *Session) Edges() []viewmodel.Edge {
	return viewmodel.Edges(s.Tree())
}

// Relatives returns the derived view of one person.
func (s *Session) Relatives(id string) (tree.Relatives, error) {
	t := s.Tree()
	if _, ok := t.Person(id); !ok {
		return tree.Relatives{}, fmt.Errorf("person %q: %w", id, tree.ErrPersonNotFound)
	}
	return tree.RelativesOf(t, id), nil
}

// Search finds people by name, leaving out excludeID (typically the person
// a relationship is being drawn from).
func (s *Session) Search(query, excludeID string) iter.Seq[tree.Person] {
	return tree.SearchByName(s.Tree(), query, excludeID)
}

// SearchList collects Search into a slice.
func (s *Session) SearchList(query, excludeID string) []tree.Person {
	return slices.Collect(s.Search(query, excludeID))
}

// Export writes the tree as indented JSON, the same document the server
// stores.
func (s *Session) Export(w io.Writer) error {
	raw, err := tree.EncodeIndent(s.Tree())
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("export tree: %w", err)
	}
	return nil
}

// Pending reports whether an edit has not been written yet.
func (s *Session) Pending() bool {
	return s.scheduler.Pending()
}

// Flush writes any pending edit now.
func (s *Session) Flush(ctx context.Context) error {
	return s.scheduler.Flush(ctx)
}

// Close flushes pending edits and stops scheduling writes.
func (s *Session) Close(ctx context.Context) error {
	return s.scheduler.Close(ctx)
}
