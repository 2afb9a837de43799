package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements RowStore against the PostgreSQL database.
type GormStore struct {
	db *gorm.DB
}

var _ RowStore = (*GormStore)(nil)

// NewGormStore wraps an initialized gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) query(ctx context.Context, table string, filters Filters) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Table(table)
	for _, f := range filters {
		switch f.Op {
		case OpEq:
			q = q.Where(fmt.Sprintf("%s = ?", f.Column), f.Value)
		case OpNeq:
			q = q.Where(fmt.Sprintf("%s <> ?", f.Column), f.Value)
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return q, nil
}

// Select fills dest with all rows matching the filters.
func (s *GormStore) Select(ctx context.Context, table string, filters Filters, opts Options, dest any) error {
	q, err := s.query(ctx, table, filters)
	if err != nil {
		return err
	}
	if opts.OrderBy != "" {
		dir := "ASC"
		if opts.Desc {
			dir = "DESC"
		}
		q = q.Order(fmt.Sprintf("%s %s", opts.OrderBy, dir))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q.Find(dest).Error
}

// SelectOne fills dest with the single row matching the filters.
func (s *GormStore) SelectOne(ctx context.Context, table string, filters Filters, dest any) error {
	q, err := s.query(ctx, table, filters)
	if err != nil {
		return err
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNoRows
	}
	if count > 1 {
		return ErrMultipleRows
	}

	// Count consumed the statement conditions, rebuild the query
	q, _ = s.query(ctx, table, filters)
	if err := q.Take(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoRows
		}
		return err
	}
	return nil
}

// Insert adds one record, mapping uniqueness violations to ErrDuplicate.
func (s *GormStore) Insert(ctx context.Context, table string, record any) error {
	if err := s.db.WithContext(ctx).Table(table).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update patches all rows matching the filters.
func (s *GormStore) Update(ctx context.Context, table string, filters Filters, patch map[string]any) error {
	q, err := s.query(ctx, table, filters)
	if err != nil {
		return err
	}
	return q.Updates(patch).Error
}

// GenerateClientID atomically increments the tenant id counter row and
// formats the next identifier.
func (s *GormStore) GenerateClientID(ctx context.Context) (string, error) {
	var next uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter model.ClientIDCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = model.ClientIDCounter{NextID: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		next = counter.NextID
		counter.NextID++
		return tx.Save(&counter).Error
	})
	if err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return FormatClientID(next), nil
}

// FormatClientID renders a counter value as a tenant identifier.
func FormatClientID(n uint) string {
	return fmt.Sprintf("CL-%06d", n)
}
