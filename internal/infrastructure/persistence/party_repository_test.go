package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPartyTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PartyModel{}, &models.AssociationModel{}, &models.MandateModel{})
	require.NoError(t, err)

	return db
}

func TestGormPartyRepository_SaveAndFind(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormPartyRepository(db)
	ctx := context.Background()

	t.Run("round-trips a person with sub-collections", func(t *testing.T) {
		tenantID := uuid.New()
		person, err := party.NewPerson(tenantID, "Ada", "Lovelace")
		require.NoError(t, err)

		weight, err := valueobject.NewDecimalValueFromString("82.60")
		require.NoError(t, err)
		require.NoError(t, person.SetAttribute(party.NewAttribute("weight", weight.WithUnit("KILOGRAM"))))
		require.NoError(t, person.AddRole(party.Role{Type: "employee"}))

		require.NoError(t, repo.Save(ctx, person))

		found, err := repo.FindByIDForTenant(ctx, tenantID, person.ID)
		require.NoError(t, err)

		loaded, ok := found.(*party.Person)
		require.True(t, ok)
		assert.Equal(t, person.ID, loaded.ID)
		assert.Equal(t, "Ada Lovelace", loaded.Name)
		assert.Equal(t, "Lovelace", loaded.LastName)
		assert.True(t, loaded.HasRoleWithType("employee"))

		attr := loaded.AttributeWithType("weight")
		require.NotNil(t, attr)
		assert.Equal(t, "82.60", attr.Value.String())
	})

	t.Run("save is an upsert by id", func(t *testing.T) {
		tenantID := uuid.New()
		org, err := party.NewOrganization(tenantID, "Acme Ltd")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, org))

		require.NoError(t, org.Rename("Acme Holdings Ltd"))
		require.NoError(t, repo.Save(ctx, org))

		found, err := repo.FindByIDForTenant(ctx, tenantID, org.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Holdings Ltd", found.Common().Name)

		var count int64
		require.NoError(t, db.Model(&models.PartyModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not leak parties across tenants", func(t *testing.T) {
		tenantID := uuid.New()
		person, err := party.NewPerson(tenantID, "Grace", "Hopper")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, person))

		_, err = repo.FindByIDForTenant(ctx, uuid.New(), person.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPartyRepository_List(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormPartyRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	seed := []struct {
		name string
		org  bool
	}{
		{"Alan Turing", false},
		{"Barbara Liskov", false},
		{"Initech BV", true},
	}
	for _, s := range seed {
		var p party.Party
		var err error
		if s.org {
			p, err = party.NewOrganization(tenantID, s.name)
		} else {
			first := s.name[:1]
			p, err = party.NewPerson(tenantID, first, s.name)
		}
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))
	}

	t.Run("lists all parties for the tenant", func(t *testing.T) {
		filter := shared.DefaultFilter()
		parties, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, parties, 3)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("filters by party type", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["party_type"] = string(party.TypeOrganization)

		parties, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, parties, 1)
		assert.Equal(t, party.TypeOrganization, parties[0].PartyType())

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("paginates results", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "name"
		filter.OrderDir = "asc"
		filter.PageSize = 2

		page1, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, page1, 2)

		filter.Page = 2
		page2, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, page2, 1)
	})

	t.Run("ignores unknown sort fields", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "document; DROP TABLE parties"

		_, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
	})

	t.Run("returns empty list for unknown tenant", func(t *testing.T) {
		parties, err := repo.FindAllForTenant(ctx, uuid.New(), shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, parties)
	})
}

func TestGormPartyRepository_Delete(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormPartyRepository(db)
	ctx := context.Background()

	t.Run("deletes an existing party", func(t *testing.T) {
		tenantID := uuid.New()
		person, err := party.NewPerson(tenantID, "Edsger", "Dijkstra")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, person))

		require.NoError(t, repo.Delete(ctx, tenantID, person.ID))

		_, err = repo.FindByIDForTenant(ctx, tenantID, person.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAssociationRepository(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormAssociationRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("round-trips an association with properties", func(t *testing.T) {
		assoc, err := party.NewAssociation(tenantID, "guardian", uuid.New(), uuid.New())
		require.NoError(t, err)

		share, err := valueobject.NewDecimalValueFromString("25.5")
		require.NoError(t, err)
		require.NoError(t, assoc.SetProperty(party.NewProperty("ownership_share", share)))

		require.NoError(t, repo.Save(ctx, assoc))

		found, err := repo.FindByIDForTenant(ctx, tenantID, assoc.ID)
		require.NoError(t, err)
		assert.Equal(t, "guardian", found.Type)
		assert.True(t, found.HasPropertyWithType("ownership_share"))
	})

	t.Run("finds associations from either endpoint", func(t *testing.T) {
		partyID := uuid.New()

		out, err := party.NewAssociation(tenantID, "guardian", partyID, uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, out))

		in, err := party.NewAssociation(tenantID, "guardian", uuid.New(), partyID)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, in))

		found, err := repo.FindByPartyID(ctx, tenantID, partyID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})
}

func TestGormMandateRepository(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormMandateRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("round-trips a mandate with properties", func(t *testing.T) {
		mandate, err := party.NewMandate(tenantID, "payment", uuid.New(), uuid.New())
		require.NoError(t, err)
		mandate.Reference = "MND-2026-001"

		iban := valueobject.NewStringValue("NL91ABNA0417164300")
		require.NoError(t, mandate.SetProperty(party.NewProperty("iban", iban)))

		require.NoError(t, repo.Save(ctx, mandate))

		found, err := repo.FindByIDForTenant(ctx, tenantID, mandate.ID)
		require.NoError(t, err)
		assert.Equal(t, "MND-2026-001", found.Reference)
		require.True(t, found.HasPropertyWithType("iban"))
		assert.Equal(t, "NL91ABNA0417164300", found.PropertyWithType("iban").Value.String())
	})

	t.Run("finds mandates by grantor", func(t *testing.T) {
		grantorID := uuid.New()
		for i := 0; i < 2; i++ {
			mandate, err := party.NewMandate(tenantID, "payment", grantorID, uuid.New())
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, mandate))
		}

		found, err := repo.FindByGrantorID(ctx, tenantID, grantorID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})
}
