package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
)

// EntityType names the kind of aggregate a snapshot was taken from.
type EntityType string

const (
	EntityTypeParty       EntityType = "party"
	EntityTypeAssociation EntityType = "association"
	EntityTypeMandate     EntityType = "mandate"
)

func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeParty, EntityTypeAssociation, EntityTypeMandate:
		return true
	}
	return false
}

// Snapshot is one immutable, full serialized state of an entity at a point
// in time. Snapshots are append-only: existing entries are never updated or
// deleted.
type Snapshot struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	EntityType EntityType
	EntityID   uuid.UUID
	TakenAt    time.Time
	// Seq breaks ties between snapshots taken at the same instant. It is
	// assigned by the store and increases monotonically per entity.
	Seq  int64
	Data []byte
}

// New builds a snapshot for the given entity with the capture time set to
// now in UTC.
func New(tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID, data []byte) (*Snapshot, error) {
	if tenantID == uuid.Nil {
		return nil, shared.InvalidArgument("snapshot tenant id is required")
	}
	if !entityType.IsValid() {
		return nil, shared.InvalidArgument("unknown snapshot entity type")
	}
	if entityID == uuid.Nil {
		return nil, shared.InvalidArgument("snapshot entity id is required")
	}
	if len(data) == 0 {
		return nil, shared.InvalidArgument("snapshot data is required")
	}
	return &Snapshot{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		TakenAt:    time.Now().UTC(),
		Data:       data,
	}, nil
}

// SortDirection orders history pages by capture time.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Query selects a page of an entity's history. From and To are inclusive
// bounds on TakenAt; a zero time leaves that side unbounded.
type Query struct {
	From time.Time
	To   time.Time
	Sort SortDirection
	Page int
	Size int
}

// DefaultQuery returns the full ascending history, first page.
func DefaultQuery() Query {
	return Query{Sort: SortAscending, Page: 1, Size: 20}
}

// Normalize fills unset paging fields and validates the bounds.
func (q Query) Normalize() (Query, error) {
	if q.Sort == "" {
		q.Sort = SortAscending
	}
	if q.Sort != SortAscending && q.Sort != SortDescending {
		return q, shared.InvalidArgument("sort direction must be asc or desc")
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 {
		q.Size = 20
	}
	if q.Size > 200 {
		q.Size = 200
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, shared.InvalidArgument("history range end precedes start")
	}
	return q, nil
}

// Offset returns the row offset for the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Size
}

// Store is the append-only snapshot log. Implementations must preserve
// insertion order for snapshots sharing a TakenAt instant.
type Store interface {
	Append(ctx context.Context, snap *Snapshot) error
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID, query Query) (*shared.Paginated[*Snapshot], error)
	LatestByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID) (*Snapshot, error)
	CountByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID) (int64, error)
}
