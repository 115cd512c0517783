package services

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/domain/tree"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"
	"github.com/stoat/Mewton-family-tree/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TreeService is the only thing between the HTTP layer and the store: it
// reads the document and replaces it after a shape check. It never decodes
// people or relationships, so elements the domain model would not accept
// are stored exactly as received.
type TreeService struct {
	store    ports.TreeStore
	observer ports.TreeObserver
	tracer   *observability.Tracer
	logger   *zap.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(store ports.TreeStore, observer ports.TreeObserver, logger *zap.Logger) *TreeService {
	if observer == nil {
		observer = ports.NopTreeObserver{}
	}
	return &TreeService{
		store:    store,
		observer: observer,
		tracer:   observability.NewTracer("family-tree/services"),
		logger:   logger,
	}
}

// GetTree returns the current document.
func (s *TreeService) GetTree(ctx context.Context) (json.RawMessage, error) {
	var doc json.RawMessage
	err := s.tracer.TraceFunction(ctx, "TreeService.GetTree", func(ctx context.Context) error {
		var err error
		doc, err = s.store.Load(ctx)
		return err
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.NewStorageUnavailableError("tree", err)
	}
	return doc, nil
}

// ReplaceTree validates body and, if it has the shape of a tree, hands it to
// the store as the new document. A rejected body is never written. The write
// itself is not awaited.
func (s *TreeService) ReplaceTree(ctx context.Context, body []byte) error {
	ctx, span := s.tracer.Start(ctx, "TreeService.ReplaceTree", attribute.Int("bytes", len(body)))
	defer span.End()

	result := tree.ValidateShape(body)
	if !result.Accepted {
		s.observer.ObserveRejection(string(result.Reason))
		s.logger.Warn("Rejected tree replacement",
			zap.String("reason", string(result.Reason)),
			zap.Int("bytes", len(body)),
		)
		return apperrors.NewInvalidShapeError("Invalid tree shape").
			WithCode(string(result.Reason)).
			WithDetails(map[string]interface{}{"reason": result.Reason.Message()}).
			WithCause(result.Err())
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return apperrors.NewInvalidShapeError("Invalid tree shape").WithCause(err)
	}

	if err := s.store.Save(ctx, compact.Bytes()); err != nil {
		return apperrors.NewStorageUnavailableError("tree", err)
	}

	s.observer.ObserveReplacement()
	s.logger.Debug("Tree replaced", zap.Int("bytes", compact.Len()))
	return nil
}
