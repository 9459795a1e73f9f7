package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSnapshotStore implements snapshot.Store using GORM. The snapshots
// table is append-only; rows are never updated or deleted.
type GormSnapshotStore struct {
	db *gorm.DB
}

// NewGormSnapshotStore creates a new GormSnapshotStore
func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

// Append inserts a snapshot row, assigning the next seq for the entity.
// Callers append inside the same transaction as the mutation that produced
// the snapshot, which serializes seq assignment per entity.
func (s *GormSnapshotStore) Append(ctx context.Context, snap *snapshot.Snapshot) error {
	db := dbFromContext(ctx, s.db).WithContext(ctx)

	var lastSeq int64
	if err := db.Model(&models.SnapshotModel{}).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", snap.TenantID, snap.EntityType, snap.EntityID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&lastSeq).Error; err != nil {
		return serviceUnavailable("read snapshot seq", err)
	}
	snap.Seq = lastSeq + 1

	var model models.SnapshotModel
	model.FromDomain(snap)
	if err := db.Create(&model).Error; err != nil {
		return serviceUnavailable("append snapshot", err)
	}
	return nil
}

// FindByEntity returns the snapshot page for one entity, filtered by the
// taken_at range and ordered by capture time with seq as the tie-break.
func (s *GormSnapshotStore) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType snapshot.EntityType, entityID uuid.UUID, query snapshot.Query) (*shared.Paginated[*snapshot.Snapshot], error) {
	base := s.entityQuery(ctx, tenantID, entityType, entityID)
	if !query.From.IsZero() {
		base = base.Where("taken_at >= ?", query.From)
	}
	if !query.To.IsZero() {
		base = base.Where("taken_at <= ?", query.To)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, serviceUnavailable("count snapshots", err)
	}

	direction := "ASC"
	if query.Sort == snapshot.SortDescending {
		direction = "DESC"
	}

	var snapshotModels []models.SnapshotModel
	if err := base.
		Order(fmt.Sprintf("taken_at %s, seq %s", direction, direction)).
		Offset(query.Offset()).
		Limit(query.Size).
		Find(&snapshotModels).Error; err != nil {
		return nil, serviceUnavailable("list snapshots", err)
	}

	snapshots := make([]*snapshot.Snapshot, 0, len(snapshotModels))
	for i := range snapshotModels {
		snapshots = append(snapshots, snapshotModels[i].ToDomain())
	}

	page := shared.NewPaginated(snapshots, total, query.Page, query.Size)
	return &page, nil
}

// LatestByEntity returns the most recent snapshot for one entity
func (s *GormSnapshotStore) LatestByEntity(ctx context.Context, tenantID uuid.UUID, entityType snapshot.EntityType, entityID uuid.UUID) (*snapshot.Snapshot, error) {
	var model models.SnapshotModel
	if err := s.entityQuery(ctx, tenantID, entityType, entityID).
		Order("taken_at DESC, seq DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, serviceUnavailable("find latest snapshot", err)
	}
	return model.ToDomain(), nil
}

// CountByEntity counts all snapshots for one entity
func (s *GormSnapshotStore) CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType snapshot.EntityType, entityID uuid.UUID) (int64, error) {
	var count int64
	if err := s.entityQuery(ctx, tenantID, entityType, entityID).Count(&count).Error; err != nil {
		return 0, serviceUnavailable("count snapshots", err)
	}
	return count, nil
}

func (s *GormSnapshotStore) entityQuery(ctx context.Context, tenantID uuid.UUID, entityType snapshot.EntityType, entityID uuid.UUID) *gorm.DB {
	return dbFromContext(ctx, s.db).WithContext(ctx).
		Model(&models.SnapshotModel{}).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID)
}
