package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReferenceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ReferenceItemModel{},
		&models.RoleConstraintModel{},
		&models.PropertyConstraintModel{},
	)
	require.NoError(t, err)

	return db
}

func seedReferenceItem(t *testing.T, db *gorm.DB, item reference.Item) {
	t.Helper()
	var model models.ReferenceItemModel
	model.ID = uuid.New()
	require.NoError(t, model.FromDomain(item))
	require.NoError(t, db.Create(&model).Error)
}

func TestGormReferenceLoader_Load(t *testing.T) {
	db := setupReferenceTestDB(t)
	loader := NewGormReferenceLoader(db)
	ctx := context.Background()

	t.Run("loads an empty table", func(t *testing.T) {
		table, err := loader.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, table)
	})

	t.Run("loads items with global and tenant scope", func(t *testing.T) {
		tenantID := uuid.New()

		seedReferenceItem(t, db, reference.Item{
			Category: reference.CategoryGenders,
			Code:     "FEMALE",
			Locale:   "en-US",
			Scope:    reference.GlobalScope(),
			Name:     "Female",
		})
		seedReferenceItem(t, db, reference.Item{
			Category: reference.CategoryGenders,
			Code:     "FEMALE",
			Locale:   "en-US",
			Scope:    reference.TenantScope(tenantID),
			Name:     "Female (tenant)",
		})

		table, err := loader.Load(ctx)
		require.NoError(t, err)

		items := table.ItemsForCategory(reference.CategoryGenders)
		require.Len(t, items, 2)

		var global, tenant int
		for _, item := range items {
			if item.Scope.IsGlobal() {
				global++
			} else {
				id, ok := item.Scope.TenantID()
				require.True(t, ok)
				assert.Equal(t, tenantID, id)
				tenant++
			}
		}
		assert.Equal(t, 1, global)
		assert.Equal(t, 1, tenant)
	})

	t.Run("round-trips attribute definition extras", func(t *testing.T) {
		seedReferenceItem(t, db, reference.Item{
			Category:   reference.CategoryAttributeTypes,
			Code:       "weight",
			Locale:     "en-US",
			Scope:      reference.GlobalScope(),
			Name:       "Weight",
			PartyTypes: []string{"person"},
			ValueKind:  "DECIMAL",
			UnitType:   "MASS",
		})

		table, err := loader.Load(ctx)
		require.NoError(t, err)

		var weight *reference.Item
		for _, item := range table.ItemsForCategory(reference.CategoryAttributeTypes) {
			if item.Code == "weight" {
				w := item
				weight = &w
				break
			}
		}
		require.NotNil(t, weight)
		assert.Equal(t, []string{"person"}, weight.PartyTypes)
		assert.True(t, weight.AppliesToPartyType("person"))
		assert.False(t, weight.AppliesToPartyType("organization"))
	})

	t.Run("loads constraint rows", func(t *testing.T) {
		roleRow := models.RoleConstraintModel{}
		roleRow.ID = uuid.New()
		roleRow.FromDomain(reference.RoleConstraint{
			RoleType:   "account_holder",
			Target:     reference.TargetAttribute,
			TargetType: "weight",
			Kind:       reference.ConstraintRequired,
		})
		require.NoError(t, db.Create(&roleRow).Error)

		propertyRow := models.PropertyConstraintModel{}
		propertyRow.ID = uuid.New()
		propertyRow.FromDomain(reference.PropertyConstraint{
			Owner:        reference.OwnerMandate,
			OwnerType:    "payment",
			PropertyType: "iban",
			Kind:         reference.ConstraintPattern,
			Value:        `^[A-Z]{2}\d{2}[A-Z0-9]+$`,
		})
		require.NoError(t, db.Create(&propertyRow).Error)

		table, err := loader.Load(ctx)
		require.NoError(t, err)

		roleConstraints := table.RoleConstraintsFor("account_holder")
		require.Len(t, roleConstraints, 1)
		assert.Equal(t, reference.ConstraintRequired, roleConstraints[0].Kind)

		propertyConstraints := table.PropertyConstraintsFor(reference.OwnerMandate, "payment")
		require.Len(t, propertyConstraints, 1)
		assert.Equal(t, reference.ConstraintPattern, propertyConstraints[0].Kind)
	})
}
