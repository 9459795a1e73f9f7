package reference

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mdm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	mu     sync.Mutex
	tables []*Table
	errs   []error
	calls  int
}

func (l *stubLoader) Load(_ context.Context) (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.calls
	l.calls++
	if i < len(l.errs) && l.errs[i] != nil {
		return nil, l.errs[i]
	}
	if i < len(l.tables) {
		return l.tables[i], nil
	}
	return l.tables[len(l.tables)-1], nil
}

func mustTable(t *testing.T, items []Item) *Table {
	t.Helper()
	table, err := NewTable(items, nil, nil)
	require.NoError(t, err)
	return table
}

func TestTableConstraintLookup(t *testing.T) {
	roleRows := []RoleConstraint{
		{RoleType: "employer", Target: TargetAttribute, TargetType: "payroll_number", Kind: ConstraintRequired},
		{RoleType: "employer", Target: TargetPreference, TargetType: "payslip_channel", Kind: ConstraintRequired},
		{RoleType: "employer_of_record", Target: TargetAttribute, TargetType: "registration_id", Kind: ConstraintRequired},
	}
	propertyRows := []PropertyConstraint{
		{Owner: OwnerAssociation, OwnerType: "guardian", PropertyType: "court_order_ref", Kind: ConstraintRequired},
		{Owner: OwnerMandate, OwnerType: "payment", PropertyType: "iban", Kind: ConstraintRequired},
	}
	table, err := NewTable(nil, roleRows, propertyRows)
	require.NoError(t, err)

	t.Run("role lookup is exact match", func(t *testing.T) {
		rows := table.RoleConstraintsFor("employer")
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, "employer", row.RoleType)
		}
		// "employer" must not pick up "employer_of_record" rows.
		assert.Len(t, table.RoleConstraintsFor("employer_of_record"), 1)
		assert.Empty(t, table.RoleConstraintsFor("employ"))
	})

	t.Run("property lookup is keyed by owner and type", func(t *testing.T) {
		assert.Len(t, table.PropertyConstraintsFor(OwnerAssociation, "guardian"), 1)
		assert.Empty(t, table.PropertyConstraintsFor(OwnerAssociation, "payment"))
		assert.Len(t, table.PropertyConstraintsFor(OwnerMandate, "payment"), 1)
	})
}

func TestNewTableRejectsMalformedLocale(t *testing.T) {
	_, err := NewTable([]Item{
		{Category: CategoryGenders, Code: "x", Locale: "!!", Scope: GlobalScope()},
	}, nil, nil)

	assert.Error(t, err)
}

func TestStoreReload(t *testing.T) {
	ctx := context.Background()
	gen1 := mustTable(t, []Item{{Category: CategoryGenders, Code: "a", Locale: "en-US", Scope: GlobalScope()}})
	gen2 := mustTable(t, []Item{
		{Category: CategoryGenders, Code: "a", Locale: "en-US", Scope: GlobalScope()},
		{Category: CategoryGenders, Code: "b", Locale: "en-US", Scope: GlobalScope()},
	})

	t.Run("current loads lazily on first use", func(t *testing.T) {
		store := NewStore(&stubLoader{tables: []*Table{gen1}})

		table, err := store.Current(ctx)
		require.NoError(t, err)
		assert.Len(t, table.ItemsForCategory(CategoryGenders), 1)
	})

	t.Run("reload swaps the whole generation", func(t *testing.T) {
		store := NewStore(&stubLoader{tables: []*Table{gen1, gen2}})
		_, err := store.Current(ctx)
		require.NoError(t, err)

		require.NoError(t, store.Reload(ctx))

		table, err := store.Current(ctx)
		require.NoError(t, err)
		assert.Len(t, table.ItemsForCategory(CategoryGenders), 2)
	})

	t.Run("failed reload keeps the previous generation", func(t *testing.T) {
		loader := &stubLoader{tables: []*Table{gen1, nil}, errs: []error{nil, errors.New("db down")}}
		store := NewStore(loader)
		_, err := store.Current(ctx)
		require.NoError(t, err)

		require.Error(t, store.Reload(ctx))

		table, err := store.Current(ctx)
		require.NoError(t, err)
		assert.Len(t, table.ItemsForCategory(CategoryGenders), 1)
	})

	t.Run("unloadable store fails service unavailable", func(t *testing.T) {
		store := NewStore(&stubLoader{errs: []error{shared.ErrServiceUnavailable}, tables: []*Table{nil}})

		_, err := store.Current(ctx)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SERVICE_UNAVAILABLE", domainErr.Code)
	})

	t.Run("concurrent readers see a full generation", func(t *testing.T) {
		store := NewStore(&stubLoader{tables: []*Table{gen1, gen2}})
		_, err := store.Current(ctx)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					table, err := store.Current(ctx)
					if assert.NoError(t, err) {
						n := len(table.ItemsForCategory(CategoryGenders))
						assert.True(t, n == 1 || n == 2)
					}
				}
			}()
		}
		for i := 0; i < 10; i++ {
			require.NoError(t, store.Reload(ctx))
		}
		wg.Wait()
	})
}
