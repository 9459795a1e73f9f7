package reference

import (
	"context"
	"sync/atomic"

	"github.com/mdm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Table is one immutable generation of the full reference-data set: every
// reference item row and every constraint row, loaded in one shot. A Table is
// never mutated after construction; reload builds a fresh generation and the
// Store swaps the whole set in one pointer store.
type Table struct {
	items           []Item
	itemsByCategory map[Category][]Item

	roleConstraints     []RoleConstraint
	roleConstraintsByRT map[string][]RoleConstraint

	propertyConstraints        []PropertyConstraint
	propertyConstraintsByOwner map[PropertyConstraintOwner]map[string][]PropertyConstraint
}

// NewTable builds a generation from raw rows. Item locales are canonicalized
// and load order is recorded as the sort tie-break.
func NewTable(items []Item, roleConstraints []RoleConstraint, propertyConstraints []PropertyConstraint) (*Table, error) {
	t := &Table{
		items:                      make([]Item, 0, len(items)),
		itemsByCategory:            make(map[Category][]Item),
		roleConstraints:            roleConstraints,
		roleConstraintsByRT:        make(map[string][]RoleConstraint),
		propertyConstraints:        propertyConstraints,
		propertyConstraintsByOwner: make(map[PropertyConstraintOwner]map[string][]PropertyConstraint),
	}

	for i, item := range items {
		canonical, err := NormalizeLocale(item.Locale)
		if err != nil {
			return nil, err
		}
		item.Locale = canonical
		item.seq = i
		t.items = append(t.items, item)
		t.itemsByCategory[item.Category] = append(t.itemsByCategory[item.Category], item)
	}

	for _, rc := range roleConstraints {
		t.roleConstraintsByRT[rc.RoleType] = append(t.roleConstraintsByRT[rc.RoleType], rc)
	}

	for _, pc := range propertyConstraints {
		byType, ok := t.propertyConstraintsByOwner[pc.Owner]
		if !ok {
			byType = make(map[string][]PropertyConstraint)
			t.propertyConstraintsByOwner[pc.Owner] = byType
		}
		byType[pc.OwnerType] = append(byType[pc.OwnerType], pc)
	}

	return t, nil
}

// ItemsForCategory returns the raw rows of one category, in load order.
func (t *Table) ItemsForCategory(category Category) []Item {
	return t.itemsByCategory[category]
}

// RoleConstraints returns every role constraint row, in load order.
func (t *Table) RoleConstraints() []RoleConstraint {
	return t.roleConstraints
}

// RoleConstraintsFor returns the rows whose role type exactly equals the
// argument. Exact match only; no prefix or hierarchy semantics.
func (t *Table) RoleConstraintsFor(roleType string) []RoleConstraint {
	return t.roleConstraintsByRT[roleType]
}

// PropertyConstraintsFor returns the association or mandate property rows for
// one owner type, exact match.
func (t *Table) PropertyConstraintsFor(owner PropertyConstraintOwner, ownerType string) []PropertyConstraint {
	byType, ok := t.propertyConstraintsByOwner[owner]
	if !ok {
		return nil
	}
	return byType[ownerType]
}

// Loader supplies a fresh generation from the backing store. Implemented by
// the persistence layer.
type Loader interface {
	Load(ctx context.Context) (*Table, error)
}

// Store holds the current reference-data generation behind an atomically
// swappable handle. Readers take whichever generation is current when their
// call begins and hold no lock across a reload.
type Store struct {
	current atomic.Pointer[Table]
	loader  Loader
	logger  *zap.Logger
}

// StoreOption is a functional option for configuring the store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for the store.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store over the given loader. Call Reload once at
// startup to bring the first generation in.
func NewStore(loader Loader, opts ...StoreOption) *Store {
	s := &Store{
		loader: loader,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStaticStore creates a store pinned to a pre-built table. Used by tests
// and tools that do not reload.
func NewStaticStore(table *Table) *Store {
	s := &Store{logger: zap.NewNop()}
	s.current.Store(table)
	return s
}

// Reload loads a fresh generation and swaps it in. On failure the previous
// generation stays current, so readers never observe a partial set.
func (s *Store) Reload(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	table, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("reference table reload failed", zap.Error(err))
		return err
	}
	s.current.Store(table)
	s.logger.Info("reference table reloaded",
		zap.Int("items", len(table.items)),
		zap.Int("role_constraints", len(table.roleConstraints)),
		zap.Int("property_constraints", len(table.propertyConstraints)),
	)
	return nil
}

// Current returns the current generation, loading one on first use. Fails
// SERVICE_UNAVAILABLE when no generation could be brought in.
func (s *Store) Current(ctx context.Context) (*Table, error) {
	if t := s.current.Load(); t != nil {
		return t, nil
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	if t := s.current.Load(); t != nil {
		return t, nil
	}
	return nil, shared.ErrServiceUnavailable
}
