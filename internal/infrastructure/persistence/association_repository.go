package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssociationRepository implements party.AssociationRepository using GORM
type GormAssociationRepository struct {
	db *gorm.DB
}

// NewGormAssociationRepository creates a new GormAssociationRepository
func NewGormAssociationRepository(db *gorm.DB) *GormAssociationRepository {
	return &GormAssociationRepository{db: db}
}

// FindByIDForTenant finds an association by ID within a tenant
func (r *GormAssociationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Association, error) {
	var model models.AssociationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, serviceUnavailable("find association", err)
	}
	return model.ToDomain()
}

// FindByPartyID finds all associations a party participates in, either side
func (r *GormAssociationRepository) FindByPartyID(ctx context.Context, tenantID, partyID uuid.UUID) ([]party.Association, error) {
	var associationModels []models.AssociationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND (from_party_id = ? OR to_party_id = ?)", tenantID, partyID, partyID).
		Order("created_at").
		Find(&associationModels).Error; err != nil {
		return nil, serviceUnavailable("list associations", err)
	}

	associations := make([]party.Association, 0, len(associationModels))
	for i := range associationModels {
		a, err := associationModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		associations = append(associations, *a)
	}
	return associations, nil
}

// Save persists an association, inserting or updating by ID
func (r *GormAssociationRepository) Save(ctx context.Context, a *party.Association) error {
	var model models.AssociationModel
	if err := model.FromDomain(a); err != nil {
		return err
	}
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error; err != nil {
		return serviceUnavailable("save association", err)
	}
	return nil
}

// Delete removes an association within a tenant
func (r *GormAssociationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.AssociationModel{})
	if result.Error != nil {
		return serviceUnavailable("delete association", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
