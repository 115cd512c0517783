package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stoat/Mewton-family-tree/application/viewmodel"
	"github.com/stoat/Mewton-family-tree/domain/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeRemote struct {
	mu      sync.Mutex
	current tree.Tree
	saves   int
	saveErr error
	loadErr error
}

func (f *fakeRemote) LoadTree(ctx context.Context) (tree.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.loadErr
}

func (f *fakeRemote) SaveTree(ctx context.Context, t tree.Tree) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.current = t
	return nil
}

func (f *fakeRemote) snapshot() (tree.Tree, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.saves
}

func openSession(t *testing.T, remote *fakeRemote) *Session {
	t.Helper()
	s, err := Open(context.Background(), remote, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestOpenLoadsTree(t *testing.T) {
	remote := &fakeRemote{current: tree.Empty().WithTitle("Loaded")}
	s := openSession(t, remote)
	assert.Equal(t, "Loaded", s.Tree().Meta.Title)
}

func TestOpenFailure(t *testing.T) {
	_, err := Open(context.Background(), &fakeRemote{loadErr: errors.New("offline")}, time.Hour, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestEditsAreOptimisticAndCoalesced(t *testing.T) {
	remote := &fakeRemote{current: tree.Empty()}
	s := openSession(t, remote)
	ctx := context.Background()

	anna, err := s.AddPerson("Anna")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, anna.X, 0.0)
	assert.Less(t, anna.X, 200.0)

	bert, err := s.AddPerson("Bert")
	require.NoError(t, err)
	_, err = s.AddRelationship(tree.Partner, anna.ID, bert.ID)
	require.NoError(t, err)

	birth := "1850"
	require.NoError(t, s.EditPerson(anna.ID, tree.PersonEdit{Birth: &birth}))

	assert.Len(t, s.Tree().People, 2, "visible before any write")
	assert.True(t, s.Pending())

	require.NoError(t, s.Flush(ctx))
	saved, saves := remote.snapshot()
	assert.Equal(t, 1, saves)
	assert.Equal(t, s.Tree(), saved)
}

func TestFailedEditLeavesTreeAlone(t *testing.T) {
	s := openSession(t, &fakeRemote{current: tree.Empty()})

	_, err := s.AddPerson("   ")
	assert.ErrorIs(t, err, tree.ErrEmptyDisplayName)
	assert.ErrorIs(t, s.RemovePerson("nobody"), tree.ErrPersonNotFound)
	assert.ErrorIs(t, s.RemoveRelationship("nothing"), tree.ErrRelationshipNotFound)
	assert.Empty(t, s.Tree().People)
	assert.False(t, s.Pending())
}

func TestNetworkFailureDoesNotRollBack(t *testing.T) {
	remote := &fakeRemote{current: tree.Empty(), saveErr: errors.New("connection refused")}
	s := New(tree.Empty(), remote, 10*time.Millisecond, zaptest.NewLogger(t))

	_, err := s.AddPerson("Anna")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, saves := remote.snapshot()
		return saves == 1
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, s.Tree().People, 1, "local state survives the failed write")
	server, _ := remote.snapshot()
	assert.Empty(t, server.People)
}

func TestCanvasChanges(t *testing.T) {
	base := tree.Empty()
	base.People = []tree.Person{{ID: "a", DisplayName: "Anna"}, {ID: "b", DisplayName: "Bert"}}
	base.Relationships = []tree.Relationship{{ID: "r1", Type: tree.Partner, From: "a", To: "b"}}
	s := openSession(t, &fakeRemote{current: base})

	s.OnNodesChange([]viewmodel.NodeChange{{Type: viewmodel.ChangeSelect, ID: "a", Selected: true}})
	assert.False(t, s.Pending(), "selection is not persisted")

	s.OnNodesChange([]viewmodel.NodeChange{
		{Type: viewmodel.ChangePosition, ID: "a", Position: &viewmodel.Position{X: 12, Y: 34}, Dragging: true},
	})
	p, _ := s.Tree().Person("a")
	assert.Equal(t, 12.0, p.X)
	assert.Equal(t, 34.0, p.Y)
	assert.True(t, s.Pending())

	s.OnEdgesChange([]viewmodel.EdgeChange{{Type: viewmodel.ChangeRemove, ID: "r1"}})
	assert.Empty(t, s.Tree().Relationships)

	assert.Len(t, s.Nodes(), 2)
	assert.Empty(t, s.Edges())
}

func TestRelativesAndSearch(t *testing.T) {
	base := tree.Empty()
	base.People = []tree.Person{
		{ID: "p", DisplayName: "Hannah", Birth: "1850"},
		{ID: "c", DisplayName: "Anna"},
		{ID: "s", DisplayName: "Susan"},
	}
	base.Relationships = []tree.Relationship{{ID: "r", Type: tree.ParentChild, From: "p", To: "c"}}
	s := openSession(t, &fakeRemote{current: base})

	rel, err := s.Relatives("c")
	require.NoError(t, err)
	require.Len(t, rel.Parents, 1)
	assert.Equal(t, "Hannah", rel.Parents[0].DisplayName)

	_, err = s.Relatives("ghost")
	assert.ErrorIs(t, err, tree.ErrPersonNotFound)

	names := []string{}
	for _, p := range s.SearchList("ANN", "") {
		names = append(names, p.DisplayName)
	}
	assert.Equal(t, []string{"Anna", "Hannah"}, names)
}

func TestExportMatchesPersistedShape(t *testing.T) {
	s := openSession(t, &fakeRemote{current: tree.Empty()})

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	assert.Equal(t, "{\n  \"people\": [],\n  \"relationships\": [],\n  \"meta\": {\n    \"title\": \"Family Tree\"\n  }\n}", buf.String())
}

func TestCloseFlushes(t *testing.T) {
	remote := &fakeRemote{current: tree.Empty()}
	s := openSession(t, remote)

	require.NoError(t, s.SetTitle("Closing time"))
	require.NoError(t, s.Close(context.Background()))

	saved, _ := remote.snapshot()
	assert.Equal(t, "Closing time", saved.Meta.Title)
}
