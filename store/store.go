// Package store performs every read and write against the entity tables.
// Each mutation resolves its target, checks access, writes and records the
// audit entry inside one transaction.
package store

import (
	"context"
	"slices"
	"strconv"

	"payment-tracker-api/apperr"
	"payment-tracker-api/audit"
	"payment-tracker-api/filters"
	"payment-tracker-api/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options holds the process-wide account names and paging bounds. Both
// accounts are hidden from listings, not addressable by id and cannot be
// registered or renamed into.
type Options struct {
	// ReservedUsername is the system account.
	ReservedUsername string
	// FallbackUsername receives audit entries that have no actor or owner.
	FallbackUsername string
	Paginator        pagination.Paginator
}

type Store struct {
	db        *gorm.DB
	audit     *audit.Recorder
	reserved  []string
	paginator pagination.Paginator
	logger    *zap.Logger
}

func New(db *gorm.DB, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:        db,
		audit:     audit.NewRecorder(opts.FallbackUsername, logger.Named("audit")),
		reserved:  reservedNames(opts.ReservedUsername, opts.FallbackUsername),
		paginator: opts.Paginator,
		logger:    logger,
	}
}

func reservedNames(names ...string) []string {
	var out []string
	for _, n := range names {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// isReserved reports whether username belongs to a system account.
func (s *Store) isReserved(username string) bool {
	return slices.Contains(s.reserved, username)
}

// Paginator returns the configured page size bounds.
func (s *Store) Paginator() pagination.Paginator { return s.paginator }

// List is one page of a filtered result set.
type List[T any] struct {
	Items  []T
	Count  int64
	Window pagination.Window
}

// paginate counts the filtered rows, resolves the page and loads it with
// ordering applied.
func paginate[T any](ctx context.Context, db *gorm.DB, p filters.Pipeline, req pagination.Request, preload ...string) (List[T], error) {
	var count int64
	if err := p.Filter(db.WithContext(ctx).Model(new(T))).Count(&count).Error; err != nil {
		return List[T]{}, err
	}
	w, err := req.Resolve(count)
	if err != nil {
		return List[T]{}, err
	}

	q := p.Apply(db.WithContext(ctx).Model(new(T)))
	for _, rel := range preload {
		q = q.Preload(rel)
	}
	var items []T
	if err := q.Limit(w.Size).Offset(w.Offset()).Find(&items).Error; err != nil {
		return List[T]{}, err
	}
	return List[T]{Items: items, Count: count, Window: w}, nil
}

// ParseID converts a path id; anything unparsable is treated as not found.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return uint(id), nil
}

func find[T any](tx *gorm.DB, id uint, preload ...string) (*T, error) {
	q := tx
	for _, rel := range preload {
		q = q.Preload(rel)
	}
	var out T
	if err := q.First(&out, id).Error; err != nil {
		return nil, apperr.FromDB(err, "id")
	}
	return &out, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
