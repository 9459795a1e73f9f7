package reference

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func newTestResolver(t *testing.T, items []Item) *Resolver {
	t.Helper()
	table, err := NewTable(items, nil, nil)
	require.NoError(t, err)
	resolver, err := NewResolver(NewStaticStore(table))
	require.NoError(t, err)
	return resolver
}

func TestResolveOverlay(t *testing.T) {
	tenant1 := uuid.New()
	tenant2 := uuid.New()
	ctx := context.Background()

	items := []Item{
		{Category: CategoryAttributeTypes, Code: "height", Locale: "en-US", Scope: GlobalScope(), Name: "Height"},
		{Category: CategoryAttributeTypes, Code: "weight", Locale: "en-US", Scope: GlobalScope(), Name: "Weight"},
		{Category: CategoryAttributeTypes, Code: "shoe_size", Locale: "en-US", Scope: TenantScope(tenant1), Name: "Shoe size"},
		{Category: CategoryAttributeTypes, Code: "weight", Locale: "nl-NL", Scope: GlobalScope(), Name: "Gewicht"},
	}
	resolver := newTestResolver(t, items)

	t.Run("tenant overlay strictly adds to the global set", func(t *testing.T) {
		global, err := resolver.Resolve(ctx, CategoryAttributeTypes, GlobalScope(), "en-US")
		require.NoError(t, err)
		assert.Len(t, global, 2)

		withOverlay, err := resolver.Resolve(ctx, CategoryAttributeTypes, TenantScope(tenant1), "en-US")
		require.NoError(t, err)
		assert.Len(t, withOverlay, 3)
	})

	t.Run("another tenant does not see the overlay", func(t *testing.T) {
		other, err := resolver.Resolve(ctx, CategoryAttributeTypes, TenantScope(tenant2), "en-US")
		require.NoError(t, err)
		assert.Len(t, other, 2)
	})

	t.Run("locale filters rows", func(t *testing.T) {
		dutch, err := resolver.Resolve(ctx, CategoryAttributeTypes, GlobalScope(), "nl-NL")
		require.NoError(t, err)
		require.Len(t, dutch, 1)
		assert.Equal(t, "Gewicht", dutch[0].Name)
	})

	t.Run("unknown category yields empty list not error", func(t *testing.T) {
		none, err := resolver.Resolve(ctx, Category("hat_sizes"), GlobalScope(), "en-US")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestResolveOrdering(t *testing.T) {
	ctx := context.Background()
	items := []Item{
		{Category: CategoryGenders, Code: "unindexed_first", Locale: "en-US", Scope: GlobalScope()},
		{Category: CategoryGenders, Code: "third", Locale: "en-US", Scope: GlobalScope(), SortIndex: intPtr(30)},
		{Category: CategoryGenders, Code: "first", Locale: "en-US", Scope: GlobalScope(), SortIndex: intPtr(10)},
		{Category: CategoryGenders, Code: "second", Locale: "en-US", Scope: GlobalScope(), SortIndex: intPtr(20)},
		{Category: CategoryGenders, Code: "unindexed_second", Locale: "en-US", Scope: GlobalScope()},
	}
	resolver := newTestResolver(t, items)

	resolved, err := resolver.Resolve(ctx, CategoryGenders, GlobalScope(), "en-US")
	require.NoError(t, err)

	codes := make([]string, 0, len(resolved))
	for _, item := range resolved {
		codes = append(codes, item.Code)
	}
	// Indexed rows ascending, unindexed after them in load order.
	assert.Equal(t, []string{"first", "second", "third", "unindexed_first", "unindexed_second"}, codes)
}

func TestResolveLocaleHandling(t *testing.T) {
	ctx := context.Background()
	items := []Item{
		{Category: CategoryGenders, Code: "female", Locale: "en-US", Scope: GlobalScope()},
	}
	resolver := newTestResolver(t, items)

	t.Run("empty locale uses the default", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, CategoryGenders, GlobalScope(), "")
		require.NoError(t, err)
		assert.Len(t, resolved, 1)
	})

	t.Run("locale identifier is canonicalized", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, CategoryGenders, GlobalScope(), "en-us")
		require.NoError(t, err)
		assert.Len(t, resolved, 1)
	})

	t.Run("unsupported locale fails with invalid argument", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, CategoryGenders, GlobalScope(), "tlh-KL")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})

	t.Run("malformed locale fails with invalid argument", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, CategoryGenders, GlobalScope(), "not a locale!!")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})

	t.Run("empty category fails with invalid argument", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, Category(""), GlobalScope(), "en-US")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})
}

func TestIsValid(t *testing.T) {
	tenant := uuid.New()
	ctx := context.Background()
	items := []Item{
		{Category: CategoryMaritalStatuses, Code: "married", Locale: "en-US", Scope: GlobalScope()},
		{Category: CategoryMaritalStatuses, Code: "registered_partnership", Locale: "en-US", Scope: TenantScope(tenant)},
		{Category: CategoryIdentificationTypes, Code: "passport", Locale: "en-US", Scope: GlobalScope(), PartyTypes: []string{"person"}},
		{Category: CategoryContactMechanismRoles, Code: "billing", Locale: "en-US", Scope: GlobalScope(), AppliesTo: "email_address"},
	}
	resolver := newTestResolver(t, items)

	t.Run("global code is valid for any tenant", func(t *testing.T) {
		ok, err := resolver.IsValid(ctx, CategoryMaritalStatuses, TenantScope(uuid.New()), "en-US", "married")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tenant code is valid only for the owning tenant", func(t *testing.T) {
		ok, err := resolver.IsValid(ctx, CategoryMaritalStatuses, TenantScope(tenant), "en-US", "registered_partnership")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.IsValid(ctx, CategoryMaritalStatuses, GlobalScope(), "en-US", "registered_partnership")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("code match is case-insensitive", func(t *testing.T) {
		ok, err := resolver.IsValid(ctx, CategoryMaritalStatuses, GlobalScope(), "en-US", "MARRIED")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("party type filter", func(t *testing.T) {
		ok, err := resolver.IsValidForPartyType(ctx, CategoryIdentificationTypes, GlobalScope(), "en-US", "passport", "person")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.IsValidForPartyType(ctx, CategoryIdentificationTypes, GlobalScope(), "en-US", "passport", "organization")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("secondary key filter", func(t *testing.T) {
		ok, err := resolver.IsValidForKey(ctx, CategoryContactMechanismRoles, GlobalScope(), "en-US", "billing", "email_address")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.IsValidForKey(ctx, CategoryContactMechanismRoles, GlobalScope(), "en-US", "billing", "phone_number")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("isValid agrees with resolve", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, CategoryMaritalStatuses, TenantScope(tenant), "en-US")
		require.NoError(t, err)

		for _, item := range resolved {
			ok, err := resolver.IsValid(ctx, CategoryMaritalStatuses, TenantScope(tenant), "en-US", item.Code)
			require.NoError(t, err)
			assert.True(t, ok, item.Code)
		}
	})
}
