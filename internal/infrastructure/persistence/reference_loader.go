package persistence

import (
	"context"

	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReferenceLoader loads the full reference-data table from the database.
// Each Load builds a fresh immutable generation for the reference store.
type GormReferenceLoader struct {
	db *gorm.DB
}

// NewGormReferenceLoader creates a new GormReferenceLoader
func NewGormReferenceLoader(db *gorm.DB) *GormReferenceLoader {
	return &GormReferenceLoader{db: db}
}

// Load reads every reference item and constraint row and assembles a table
// generation. Row order is the load order, which the table uses as the sort
// tie-break for items without an explicit sort index.
func (l *GormReferenceLoader) Load(ctx context.Context) (*reference.Table, error) {
	var itemModels []models.ReferenceItemModel
	if err := l.db.WithContext(ctx).
		Order("category, sort_index, code, locale, created_at").
		Find(&itemModels).Error; err != nil {
		return nil, serviceUnavailable("load reference items", err)
	}

	items := make([]reference.Item, 0, len(itemModels))
	for i := range itemModels {
		item, err := itemModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	var roleModels []models.RoleConstraintModel
	if err := l.db.WithContext(ctx).
		Order("role_type, target, target_type, created_at").
		Find(&roleModels).Error; err != nil {
		return nil, serviceUnavailable("load role constraints", err)
	}

	roleConstraints := make([]reference.RoleConstraint, 0, len(roleModels))
	for i := range roleModels {
		roleConstraints = append(roleConstraints, roleModels[i].ToDomain())
	}

	var propertyModels []models.PropertyConstraintModel
	if err := l.db.WithContext(ctx).
		Order("owner, owner_type, property_type, created_at").
		Find(&propertyModels).Error; err != nil {
		return nil, serviceUnavailable("load property constraints", err)
	}

	propertyConstraints := make([]reference.PropertyConstraint, 0, len(propertyModels))
	for i := range propertyModels {
		propertyConstraints = append(propertyConstraints, propertyModels[i].ToDomain())
	}

	return reference.NewTable(items, roleConstraints, propertyConstraints)
}
