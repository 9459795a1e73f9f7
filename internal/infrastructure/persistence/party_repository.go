package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// PartySortFields contains allowed sort fields for parties
var PartySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"party_type": true,
}

// GormPartyRepository implements party.Repository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByIDForTenant finds a party by ID within a tenant
func (r *GormPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (party.Party, error) {
	var model models.PartyModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, serviceUnavailable("find party", err)
	}
	return model.ToDomain()
}

// FindAllForTenant finds all parties for a tenant matching the filter
func (r *GormPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]party.Party, error) {
	var partyModels []models.PartyModel
	query := r.applyFilter(
		dbFromContext(ctx, r.db).WithContext(ctx).
			Model(&models.PartyModel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&partyModels).Error; err != nil {
		return nil, serviceUnavailable("list parties", err)
	}

	parties := make([]party.Party, 0, len(partyModels))
	for i := range partyModels {
		p, err := partyModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, nil
}

// CountForTenant counts parties for a tenant matching the filter
func (r *GormPartyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(
		dbFromContext(ctx, r.db).WithContext(ctx).
			Model(&models.PartyModel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, serviceUnavailable("count parties", err)
	}
	return count, nil
}

// Save persists a party aggregate, inserting or updating by ID
func (r *GormPartyRepository) Save(ctx context.Context, p party.Party) error {
	var model models.PartyModel
	if err := model.FromDomain(p); err != nil {
		return err
	}
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error; err != nil {
		return serviceUnavailable("save party", err)
	}
	return nil
}

// Delete removes a party within a tenant
func (r *GormPartyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.PartyModel{})
	if result.Error != nil {
		return serviceUnavailable("delete party", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyConditions applies search and field filters without pagination.
// Used for counting.
func (r *GormPartyRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if partyType, ok := filter.Filters["party_type"]; ok {
		query = query.Where("party_type = ?", partyType)
	}
	return query
}

// applyFilter applies conditions, ordering and pagination to the query
func (r *GormPartyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, PartySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
