package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/infrastructure/persistence"
)

func TestSnapshotStore_AppendAndQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	store := persistence.NewGormSnapshotStore(testDB.DB)

	tenantID := uuid.New()
	entityID := uuid.New()

	for i := 1; i <= 3; i++ {
		snap, err := snapshot.New(tenantID, snapshot.EntityTypeParty, entityID,
			[]byte(fmt.Sprintf(`{"version":%d}`, i)))
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, snap))
		assert.Equal(t, int64(i), snap.Seq)
	}

	t.Run("history pages in ascending order", func(t *testing.T) {
		page, err := store.FindByEntity(ctx, tenantID, snapshot.EntityTypeParty, entityID, snapshot.Query{
			Sort: snapshot.SortAscending,
			Page: 1,
			Size: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, int64(1), page.Items[0].Seq)
		assert.Equal(t, int64(2), page.Items[1].Seq)
	})

	t.Run("descending order puts the latest first", func(t *testing.T) {
		page, err := store.FindByEntity(ctx, tenantID, snapshot.EntityTypeParty, entityID, snapshot.Query{
			Sort: snapshot.SortDescending,
			Page: 1,
			Size: 10,
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, int64(3), page.Items[0].Seq)
		assert.JSONEq(t, `{"version":3}`, string(page.Items[0].Data))
	})

	t.Run("latest returns the highest seq", func(t *testing.T) {
		latest, err := store.LatestByEntity(ctx, tenantID, snapshot.EntityTypeParty, entityID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), latest.Seq)
	})

	t.Run("count is scoped to the entity", func(t *testing.T) {
		count, err := store.CountByEntity(ctx, tenantID, snapshot.EntityTypeParty, entityID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = store.CountByEntity(ctx, tenantID, snapshot.EntityTypeParty, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("sequences are independent per entity type", func(t *testing.T) {
		snap, err := snapshot.New(tenantID, snapshot.EntityTypeAssociation, entityID, []byte(`{}`))
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, snap))
		assert.Equal(t, int64(1), snap.Seq)
	})

	t.Run("other tenant has no history", func(t *testing.T) {
		count, err := store.CountByEntity(ctx, uuid.New(), snapshot.EntityTypeParty, entityID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
