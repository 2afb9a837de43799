// Package store defines the contract with the hosted relational data
// service. The rest of the application addresses it only by table name,
// filter predicates and ordering; it never sees driver errors or SQL.
package store

import (
	"context"
	"errors"
)

// Table names used by the identity core.
const (
	TableClients = "clients"
	TableAdmins  = "admins"
	TableSales   = "sale_records"
)

// Sentinel errors normalized across implementations.
var (
	// ErrNoRows is returned by SelectOne when no row matches.
	ErrNoRows = errors.New("no matching rows")
	// ErrMultipleRows is returned by SelectOne when more than one row matches.
	ErrMultipleRows = errors.New("multiple rows matched")
	// ErrDuplicate is returned by Insert on a uniqueness violation.
	ErrDuplicate = errors.New("duplicate value for unique column")
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
)

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Filters is an AND-combined predicate list.
type Filters []Filter

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Neq builds an inequality filter.
func Neq(column string, value any) Filter {
	return Filter{Column: column, Op: OpNeq, Value: value}
}

// Options control row ordering and limits for Select.
type Options struct {
	OrderBy string
	Desc    bool
	Limit   int
}

// RowStore is the query/mutation surface of the data service.
//
// Select fills dest (a pointer to a slice) with all matching rows.
// SelectOne fills dest (a pointer to a struct) with the single matching row
// and fails with ErrNoRows or ErrMultipleRows otherwise.
// Insert adds one record; Update patches all matching rows by column name.
// GenerateClientID mints a fresh, unique tenant identifier; it stands in for
// the data service's server-side id generation procedure.
type RowStore interface {
	Select(ctx context.Context, table string, filters Filters, opts Options, dest any) error
	SelectOne(ctx context.Context, table string, filters Filters, dest any) error
	Insert(ctx context.Context, table string, record any) error
	Update(ctx context.Context, table string, filters Filters, patch map[string]any) error
	GenerateClientID(ctx context.Context) (string, error)
}
