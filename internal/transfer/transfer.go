package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Document is a portable snapshot of everything a user owns.
type Document struct {
	ExportedAt time.Time                  `json:"exportedAt"`
	UserID     string                     `json:"userId"`
	Data       map[string]json.RawMessage `json:"data"`
}

type Service struct {
	store          kvstore.Store
	metricsManager *metrics.Manager
}

func NewService(store kvstore.Store, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:          store,
		metricsManager: metricsManager,
	}
}

func (s *Service) exportableKeys(ctx context.Context, userID string) ([]kvstore.Key, error) {
	keys, err := kvstore.UserKeys(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(keys, func(k kvstore.Key) bool { return !k.Exportable() }), nil
}

func (s *Service) Export(ctx context.Context, userID string, now time.Time) (_ *Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.transfer.export")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	keys, err := s.exportableKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export keys: %w", err)
	}

	doc := &Document{
		ExportedAt: now.UTC(),
		UserID:     userID,
		Data:       make(map[string]json.RawMessage, len(keys)),
	}
	for _, k := range keys {
		raw, err := s.store.Get(ctx, k.String())
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", k, err)
		}
		doc.Data[k.String()] = raw
	}

	s.metricsManager.CounterExports.Inc()
	log.Debugf("exported %d keys for user %s", len(doc.Data), userID)
	return doc, nil
}

// Import replaces the target user's data with the document contents, rewriting
// every key to the target identity. Nothing is written unless every key is valid.
func (s *Service) Import(ctx context.Context, targetUserID string, doc Document) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.transfer.import")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := kvstore.ValidateUserID(targetUserID); err != nil {
		return apperrors.Validationf("%s", err)
	}
	if doc.UserID == "" {
		return apperrors.Validationf("document has no user id")
	}

	var (
		ops     []kvstore.Op
		invalid error
		written = make(map[string]struct{}, len(doc.Data))
	)
	for raw, value := range doc.Data {
		k, err := kvstore.ParseKey(raw)
		if err != nil {
			invalid = multierr.Append(invalid, err)
			continue
		}
		if k.UserID != doc.UserID {
			invalid = multierr.Append(invalid, fmt.Errorf("key %s does not belong to user %s", raw, doc.UserID))
			continue
		}
		if !k.Exportable() {
			invalid = multierr.Append(invalid, fmt.Errorf("key %s cannot be imported", raw))
			continue
		}
		if !json.Valid(value) {
			invalid = multierr.Append(invalid, fmt.Errorf("key %s holds invalid json", raw))
			continue
		}

		target := k.WithUser(targetUserID).String()
		written[target] = struct{}{}
		ops = append(ops, kvstore.SetOp(target, value))
	}
	if invalid != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, invalid)
	}

	existing, err := s.exportableKeys(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("import, list target keys: %w", err)
	}
	for _, k := range existing {
		if _, ok := written[k.String()]; !ok {
			ops = append(ops, kvstore.DeleteOp(k.String()))
		}
	}

	if err := s.store.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("import apply: %w", err)
	}

	s.metricsManager.CounterImports.Inc()
	log.Debugf("imported %d keys from user %s into %s", len(doc.Data), doc.UserID, targetUserID)
	return nil
}
