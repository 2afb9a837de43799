package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// uniqueColumns mirrors the unique indexes AutoMigrate creates, so the
// memory store reports ErrDuplicate exactly where PostgreSQL would.
var uniqueColumns = map[string][]string{
	TableClients: {"client_id", "company_name"},
	TableAdmins:  {"username"},
}

// MemoryStore is an in-memory RowStore used by tests. Rows are held as
// struct values and matched by the snake_case column names gorm derives
// from field names.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]reflect.Value
	nextID uint
	calls  int
}

var _ RowStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][]reflect.Value),
		nextID: 1,
	}
}

// CallCount reports how many RowStore operations have been issued. The
// restoration tests use it to prove startup never touches the data service.
func (s *MemoryStore) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Seed inserts a record without counting as a store call.
func (s *MemoryStore) Seed(table string, record any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := structValue(record)

	// Keep the id counter ahead of any seeded tenant id so GenerateClientID
	// never mints an identifier that collides with a seeded row
	if val, ok := columnValue(row, "client_id"); ok {
		if id, isString := val.(string); isString {
			var n uint
			if _, err := fmt.Sscanf(id, "CL-%d", &n); err == nil && n >= s.nextID {
				s.nextID = n + 1
			}
		}
	}

	s.tables[table] = append(s.tables[table], row)
}

// Rows returns a copy of all rows in a table as any values.
func (s *MemoryStore) Rows(table string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		out = append(out, row.Interface())
	}
	return out
}

// Select fills dest (*[]T) with matching rows.
func (s *MemoryStore) Select(_ context.Context, table string, filters Filters, opts Options, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	matched, err := s.match(table, filters)
	if err != nil {
		return err
	}

	if opts.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessByColumn(matched[i], matched[j], opts.OrderBy)
			if opts.Desc {
				return !less
			}
			return less
		})
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	slice := reflect.ValueOf(dest).Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(matched)))
	for _, row := range matched {
		slice.Set(reflect.Append(slice, row))
	}
	return nil
}

// SelectOne fills dest (*T) with the single matching row.
func (s *MemoryStore) SelectOne(_ context.Context, table string, filters Filters, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	matched, err := s.match(table, filters)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return ErrNoRows
	}
	if len(matched) > 1 {
		return ErrMultipleRows
	}

	reflect.ValueOf(dest).Elem().Set(matched[0])
	return nil
}

// Insert stores one record, enforcing the table's unique columns.
func (s *MemoryStore) Insert(_ context.Context, table string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	row := structValue(record)
	for _, col := range uniqueColumns[table] {
		val, ok := columnValue(row, col)
		if !ok {
			continue
		}
		for _, existing := range s.tables[table] {
			if existingVal, ok := columnValue(existing, col); ok && existingVal == val {
				return ErrDuplicate
			}
		}
	}

	// Assign a row id when the record carries an unset ID field
	if idField := row.FieldByName("ID"); idField.IsValid() && idField.Kind() == reflect.Uint && idField.Uint() == 0 {
		idField.SetUint(uint64(s.nextID))
		s.nextID++
	}

	s.tables[table] = append(s.tables[table], row)
	return nil
}

// Update patches all matching rows by column name.
func (s *MemoryStore) Update(_ context.Context, table string, filters Filters, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	for i, row := range s.tables[table] {
		ok, err := rowMatches(row, filters)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for col, val := range patch {
			if err := setColumn(row, col, val); err != nil {
				return err
			}
		}
		s.tables[table][i] = row
	}
	return nil
}

// GenerateClientID mints the next tenant identifier from a plain counter.
func (s *MemoryStore) GenerateClientID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	id := FormatClientID(s.nextID)
	s.nextID++
	return id, nil
}

func (s *MemoryStore) match(table string, filters Filters) ([]reflect.Value, error) {
	var matched []reflect.Value
	for _, row := range s.tables[table] {
		ok, err := rowMatches(row, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			// Copy so callers never alias stored rows
			matched = append(matched, copyValue(row))
		}
	}
	return matched, nil
}

func rowMatches(row reflect.Value, filters Filters) (bool, error) {
	for _, f := range filters {
		val, ok := columnValue(row, f.Column)
		if !ok {
			return false, fmt.Errorf("unknown column %q", f.Column)
		}
		eq := reflect.DeepEqual(val, normalize(f.Value))
		switch f.Op {
		case OpEq:
			if !eq {
				return false, nil
			}
		case OpNeq:
			if eq {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return true, nil
}

func structValue(record any) reflect.Value {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return copyValue(v)
}

func copyValue(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

func columnValue(row reflect.Value, column string) (any, bool) {
	field, ok := fieldByColumn(row, column)
	if !ok {
		return nil, false
	}
	return normalize(field.Interface()), true
}

func setColumn(row reflect.Value, column string, value any) error {
	field, ok := fieldByColumn(row, column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	if !v.Type().AssignableTo(field.Type()) {
		switch {
		case field.Kind() == reflect.Pointer && v.Type().AssignableTo(field.Type().Elem()):
			p := reflect.New(field.Type().Elem())
			p.Elem().Set(v)
			v = p
		case v.Type().ConvertibleTo(field.Type()):
			v = v.Convert(field.Type())
		default:
			return fmt.Errorf("cannot assign %T to column %q", value, column)
		}
	}
	field.Set(v)
	return nil
}

func fieldByColumn(row reflect.Value, column string) (reflect.Value, bool) {
	t := row.Type()
	for i := 0; i < t.NumField(); i++ {
		if snakeCase(t.Field(i).Name) == column {
			return row.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// normalize widens numeric values so filters written with untyped constants
// compare equal to typed struct fields.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	case *time.Time:
		if n == nil {
			return nil
		}
		return *n
	default:
		return v
	}
}

func lessByColumn(a, b reflect.Value, column string) bool {
	av, _ := columnValue(a, column)
	bv, _ := columnValue(b, column)
	switch x := av.(type) {
	case string:
		y, _ := bv.(string)
		return x < y
	case int64:
		y, _ := bv.(int64)
		return x < y
	case float64:
		y, _ := bv.(float64)
		return x < y
	case time.Time:
		y, _ := bv.(time.Time)
		return x.Before(y)
	default:
		return false
	}
}

// snakeCase converts a Go field name to the column name gorm derives from
// it (ClientID -> client_id, AccessStatus -> access_status).
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if prevLower || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
