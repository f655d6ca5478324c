package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/2beens/betterlife/internal/transfer"
)

type userLister interface {
	UserIDs(ctx context.Context) ([]string, error)
}

type exporter interface {
	Export(ctx context.Context, userID string, now time.Time) (*transfer.Document, error)
}

type backup struct {
	users    userLister
	exporter exporter
	dir      string
	now      func() time.Time
}

// run exports every user into <dir>/<userID>-<date>.json. A failing user does not
// stop the others; all failures are returned together.
func (b *backup) run(ctx context.Context) (int, error) {
	if err := os.MkdirAll(b.dir, 0o750); err != nil {
		return 0, fmt.Errorf("create backup dir: %w", err)
	}

	userIDs, err := b.users.UserIDs(ctx)
	if err != nil {
		return 0, err
	}

	now := b.now()
	written := 0
	var errs error
	for _, userID := range userIDs {
		if err := b.exportUser(ctx, userID, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		written++
	}
	return written, errs
}

func (b *backup) exportUser(ctx context.Context, userID string, now time.Time) error {
	doc, err := b.exporter.Export(ctx, userID, now)
	if err != nil {
		return err
	}

	docBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	fileName := filepath.Join(b.dir, fmt.Sprintf("%s-%s.json", userID, now.UTC().Format(time.DateOnly)))
	if err := os.WriteFile(fileName, docBytes, 0o640); err != nil {
		return err
	}
	log.Debugf("backup: %d keys of user %s written to [%s]", len(doc.Data), userID, fileName)
	return nil
}
