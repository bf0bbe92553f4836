package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// LazyIndex defers backend initialization until the first operation that
// needs it, then memoizes the result. The index handle is an explicit
// two-state value (uninitialized or ready) rather than a nullable field;
// an initialization failure is a configuration error that every subsequent
// operation surfaces unchanged, never retried or degraded.
type LazyIndex struct {
	connect func() (VectorIndex, error)
	once    sync.Once
	index   VectorIndex
	initErr error
}

// NewLazyIndex wraps connect, which will be invoked at most once.
func NewLazyIndex(connect func() (VectorIndex, error)) *LazyIndex {
	return &LazyIndex{connect: connect}
}

// ensure establishes the backend handle on first use.
func (l *LazyIndex) ensure() (VectorIndex, error) {
	l.once.Do(func() {
		l.index, l.initErr = l.connect()
	})
	if l.initErr != nil {
		return nil, fmt.Errorf("vector index initialization failed: %w", l.initErr)
	}
	return l.index, nil
}

func (l *LazyIndex) Upsert(ctx context.Context, records []models.IndexedRecord) error {
	idx, err := l.ensure()
	if err != nil {
		return err
	}
	return idx.Upsert(ctx, records)
}

func (l *LazyIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]models.SearchMatch, error) {
	idx, err := l.ensure()
	if err != nil {
		return nil, err
	}
	return idx.Query(ctx, vector, topK, filter)
}

func (l *LazyIndex) DeleteByFilter(ctx context.Context, filter Filter) error {
	idx, err := l.ensure()
	if err != nil {
		return err
	}
	return idx.DeleteByFilter(ctx, filter)
}

func (l *LazyIndex) Stats(ctx context.Context) (*models.IndexStats, error) {
	idx, err := l.ensure()
	if err != nil {
		return nil, err
	}
	return idx.Stats(ctx)
}

func (l *LazyIndex) Save(path string) error {
	idx, err := l.ensure()
	if err != nil {
		return err
	}
	return idx.Save(path)
}

func (l *LazyIndex) Load(path string) error {
	idx, err := l.ensure()
	if err != nil {
		return err
	}
	return idx.Load(path)
}

// Close closes the backend if it was ever established.
func (l *LazyIndex) Close() error {
	if l.index != nil {
		return l.index.Close()
	}
	return nil
}
