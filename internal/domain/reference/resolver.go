package reference

import (
	"context"
	"sort"
	"strings"

	"github.com/mdm/backend/internal/domain/shared"
)

// Resolver merges the global reference rows with one tenant's rows into the
// effective list for a category and locale. The tenant overlay strictly adds:
// a tenant row never removes or replaces a global row, because row identity
// includes the owning scope.
type Resolver struct {
	store   *Store
	locales localeSet
}

// ResolverOption is a functional option for configuring the resolver.
type ResolverOption func(*Resolver) error

// WithSupportedLocales replaces the default supported-locale set.
func WithSupportedLocales(ids []string) ResolverOption {
	return func(r *Resolver) error {
		set, err := newLocaleSet(ids)
		if err != nil {
			return err
		}
		r.locales = set
		return nil
	}
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *Store, opts ...ResolverOption) (*Resolver, error) {
	defaults, err := newLocaleSet(DefaultSupportedLocales())
	if err != nil {
		return nil, err
	}
	r := &Resolver{store: store, locales: defaults}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve returns the effective reference list for one category, scope and
// locale: global rows plus the requested tenant's rows, ordered by sort index
// ascending with rows lacking an index after those with one, load order as
// the tie-break. An unknown category yields an empty list, not an error.
// Resolution is all-or-nothing; a store failure surfaces as
// SERVICE_UNAVAILABLE with no partial result.
func (r *Resolver) Resolve(ctx context.Context, category Category, scope Scope, locale string) ([]Item, error) {
	if strings.TrimSpace(string(category)) == "" {
		return nil, shared.InvalidArgument("reference category cannot be empty")
	}
	canonical, err := r.locales.resolve(locale)
	if err != nil {
		return nil, err
	}

	table, err := r.store.Current(ctx)
	if err != nil {
		return nil, err
	}

	var effective []Item
	for _, item := range table.ItemsForCategory(category) {
		if item.Locale != canonical {
			continue
		}
		if !item.Scope.VisibleTo(scope) {
			continue
		}
		effective = append(effective, item)
	}

	sort.SliceStable(effective, func(i, j int) bool {
		a, b := effective[i], effective[j]
		switch {
		case a.SortIndex != nil && b.SortIndex != nil:
			if *a.SortIndex != *b.SortIndex {
				return *a.SortIndex < *b.SortIndex
			}
			return a.seq < b.seq
		case a.SortIndex != nil:
			return true
		case b.SortIndex != nil:
			return false
		default:
			return a.seq < b.seq
		}
	})

	return effective, nil
}

// Item returns the effective item carrying the given code, or nil when the
// code is not part of the effective set. Implemented over Resolve so list
// retrieval and membership can never disagree.
func (r *Resolver) Item(ctx context.Context, category Category, scope Scope, locale, code string) (*Item, error) {
	items, err := r.Resolve(ctx, category, scope, locale)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if strings.EqualFold(items[i].Code, code) {
			return &items[i], nil
		}
	}
	return nil, nil
}

// IsValid reports whether the code is part of the effective reference list.
func (r *Resolver) IsValid(ctx context.Context, category Category, scope Scope, locale, code string) (bool, error) {
	item, err := r.Item(ctx, category, scope, locale, code)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// IsValidForPartyType additionally requires the item to apply to the given
// party type code.
func (r *Resolver) IsValidForPartyType(ctx context.Context, category Category, scope Scope, locale, code, partyType string) (bool, error) {
	item, err := r.Item(ctx, category, scope, locale, code)
	if err != nil {
		return false, err
	}
	return item != nil && item.AppliesToPartyType(partyType), nil
}

// IsValidForKey additionally filters by the category-specific secondary key,
// e.g. the contact mechanism type a contact mechanism role applies to.
func (r *Resolver) IsValidForKey(ctx context.Context, category Category, scope Scope, locale, code, appliesTo string) (bool, error) {
	item, err := r.Item(ctx, category, scope, locale, code)
	if err != nil {
		return false, err
	}
	return item != nil && strings.EqualFold(item.AppliesTo, appliesTo), nil
}
