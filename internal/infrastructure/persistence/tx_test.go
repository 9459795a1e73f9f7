package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTxTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PartyModel{}, &models.SnapshotModel{})
	require.NoError(t, err)

	return db
}

func TestGormTransactionManager(t *testing.T) {
	t.Run("commits mutation and snapshot together", func(t *testing.T) {
		db := setupTxTestDB(t)
		tx := NewGormTransactionManager(db)
		parties := NewGormPartyRepository(db)
		snapshots := NewGormSnapshotStore(db)
		ctx := context.Background()

		tenantID := uuid.New()
		person, err := party.NewPerson(tenantID, "Ada", "Lovelace")
		require.NoError(t, err)
		data, err := party.Marshal(person)
		require.NoError(t, err)

		err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := parties.Save(ctx, person); err != nil {
				return err
			}
			snap, err := snapshot.New(tenantID, snapshot.EntityTypeParty, person.ID, data)
			if err != nil {
				return err
			}
			return snapshots.Append(ctx, snap)
		})
		require.NoError(t, err)

		_, err = parties.FindByIDForTenant(ctx, tenantID, person.ID)
		require.NoError(t, err)

		count, err := snapshots.CountByEntity(ctx, tenantID, snapshot.EntityTypeParty, person.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rolls back both writes when fn fails", func(t *testing.T) {
		db := setupTxTestDB(t)
		tx := NewGormTransactionManager(db)
		parties := NewGormPartyRepository(db)
		ctx := context.Background()

		tenantID := uuid.New()
		person, err := party.NewPerson(tenantID, "Grace", "Hopper")
		require.NoError(t, err)

		failure := errors.New("snapshot write failed")
		err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := parties.Save(ctx, person); err != nil {
				return err
			}
			return failure
		})
		assert.ErrorIs(t, err, failure)

		_, err = parties.FindByIDForTenant(ctx, tenantID, person.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("nested call joins the open transaction", func(t *testing.T) {
		db := setupTxTestDB(t)
		tx := NewGormTransactionManager(db)
		parties := NewGormPartyRepository(db)
		ctx := context.Background()

		tenantID := uuid.New()
		person, err := party.NewPerson(tenantID, "Alan", "Turing")
		require.NoError(t, err)

		failure := errors.New("outer failure")
		err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
				return parties.Save(ctx, person)
			}); err != nil {
				return err
			}
			return failure
		})
		assert.ErrorIs(t, err, failure)

		// The nested save rolled back with the outer transaction
		_, err = parties.FindByIDForTenant(ctx, tenantID, person.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
