package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/snapshot"
)

// SnapshotModel maps one append-only snapshot row. Rows are never updated or
// deleted; seq orders snapshots sharing a taken_at instant.
type SnapshotModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_snapshots_entity"`
	EntityType string    `gorm:"not null;index:idx_snapshots_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_snapshots_entity"`
	TakenAt    time.Time `gorm:"not null"`
	Seq        int64     `gorm:"not null"`
	Data       string    `gorm:"type:jsonb;not null"`
}

// TableName specifies the table name for SnapshotModel
func (SnapshotModel) TableName() string {
	return "snapshots"
}

// ToDomain converts the row to a domain snapshot.
func (m *SnapshotModel) ToDomain() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID:         m.ID,
		TenantID:   m.TenantID,
		EntityType: snapshot.EntityType(m.EntityType),
		EntityID:   m.EntityID,
		TakenAt:    m.TakenAt,
		Seq:        m.Seq,
		Data:       []byte(m.Data),
	}
}

// FromDomain populates the row from a domain snapshot.
func (m *SnapshotModel) FromDomain(s *snapshot.Snapshot) {
	m.ID = s.ID
	m.TenantID = s.TenantID
	m.EntityType = string(s.EntityType)
	m.EntityID = s.EntityID
	m.TakenAt = s.TakenAt
	m.Seq = s.Seq
	m.Data = string(s.Data)
}
