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

// GormMandateRepository implements party.MandateRepository using GORM
type GormMandateRepository struct {
	db *gorm.DB
}

// NewGormMandateRepository creates a new GormMandateRepository
func NewGormMandateRepository(db *gorm.DB) *GormMandateRepository {
	return &GormMandateRepository{db: db}
}

// FindByIDForTenant finds a mandate by ID within a tenant
func (r *GormMandateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Mandate, error) {
	var model models.MandateModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, serviceUnavailable("find mandate", err)
	}
	return model.ToDomain()
}

// FindByGrantorID finds all mandates granted by a party
func (r *GormMandateRepository) FindByGrantorID(ctx context.Context, tenantID, grantorID uuid.UUID) ([]party.Mandate, error) {
	var mandateModels []models.MandateModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND grantor_id = ?", tenantID, grantorID).
		Order("created_at").
		Find(&mandateModels).Error; err != nil {
		return nil, serviceUnavailable("list mandates", err)
	}

	mandates := make([]party.Mandate, 0, len(mandateModels))
	for i := range mandateModels {
		m, err := mandateModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		mandates = append(mandates, *m)
	}
	return mandates, nil
}

// Save persists a mandate, inserting or updating by ID
func (r *GormMandateRepository) Save(ctx context.Context, m *party.Mandate) error {
	var model models.MandateModel
	if err := model.FromDomain(m); err != nil {
		return err
	}
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error; err != nil {
		return serviceUnavailable("save mandate", err)
	}
	return nil
}

// Delete removes a mandate within a tenant
func (r *GormMandateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.MandateModel{})
	if result.Error != nil {
		return serviceUnavailable("delete mandate", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
