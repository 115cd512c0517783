package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stoat/Mewton-family-tree/domain/tree"
)

// TreeStore is the durable holder of exactly one tree document.
// This is a port in hexagonal architecture - the service doesn't know whether
// the document lives on disk or in DynamoDB.
type TreeStore interface {
	// Load returns the current document, initializing it on first use.
	Load(ctx context.Context) (json.RawMessage, error)

	// Save replaces the whole document. The write may complete after Save
	// returns; failures are logged by the store, not reported here.
	Save(ctx context.Context, doc json.RawMessage) error

	// Flush waits for writes that are still in flight.
	Flush(ctx context.Context) error

	// Close refuses further saves and waits for writes still in flight.
	Close(ctx context.Context) error
}

// TreeSaver pushes a whole tree to wherever the authoritative copy lives.
// On the client this is the HTTP API.
type TreeSaver interface {
	SaveTree(ctx context.Context, t tree.Tree) error
}

// TreeLoader fetches the authoritative copy of the tree.
type TreeLoader interface {
	LoadTree(ctx context.Context) (tree.Tree, error)
}

// TreeRemote is the client's view of the API.
type TreeRemote interface {
	TreeLoader
	TreeSaver
}

// StoreObserver receives the outcome of every background store write.
type StoreObserver interface {
	ObserveStoreWrite(backend string, duration time.Duration, err error)
}

// NopStoreObserver discards observations.
type NopStoreObserver struct{}

// ObserveStoreWrite implements StoreObserver.
func (NopStoreObserver) ObserveStoreWrite(string, time.Duration, error) {}

// TreeObserver receives the outcome of every replacement request.
type TreeObserver interface {
	ObserveReplacement()
	ObserveRejection(reason string)
}

// NopTreeObserver discards observations.
type NopTreeObserver struct{}

// ObserveReplacement implements TreeObserver.
func (NopTreeObserver) ObserveReplacement() {}

// ObserveRejection implements TreeObserver.
func (NopTreeObserver) ObserveRejection(string) {}
