package party

import (
	"context"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
)

// Repository persists party aggregates. The persistence layer serializes
// writers per aggregate; the domain assumes at-most-one-writer semantics.
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (Party, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Party, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, p Party) error
	// Delete removes the party and cascades to its sub-collections.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// AssociationRepository persists associations between parties.
type AssociationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Association, error)
	FindByPartyID(ctx context.Context, tenantID, partyID uuid.UUID) ([]Association, error)
	Save(ctx context.Context, a *Association) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// MandateRepository persists mandates.
type MandateRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Mandate, error)
	FindByGrantorID(ctx context.Context, tenantID, grantorID uuid.UUID) ([]Mandate, error)
	Save(ctx context.Context, m *Mandate) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
