// Package store persists finished reports so they can be fetched by ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ppiankov/greenlens/internal/model"
)

// ErrNotFound is returned by Get when no report has the requested ID
var ErrNotFound = errors.New("report not found")

// Store saves and loads reports by ID
type Store interface {
	Save(ctx context.Context, report *model.Report) error
	Get(ctx context.Context, id string) (*model.Report, error)
	Close() error
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// checkID rejects IDs that could escape a directory or break a key
func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("invalid report id %q", id)
	}
	return nil
}

// New creates the store selected by cfg.Backend. An empty backend disables
// storage and returns a nil Store.
func New(ctx context.Context, cfg model.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "file":
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
