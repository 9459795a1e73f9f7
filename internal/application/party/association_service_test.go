package party

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mdm/backend/internal/domain/constraint"
	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/domain/validation"
)

func mustTypedValue(t *testing.T, kind, text string) valueobject.TypedValue {
	t.Helper()
	v, err := valueobject.ParseTypedValue(valueobject.ValueKind(kind), text)
	require.NoError(t, err)
	return v
}

// MockAssociationRepository is a mock implementation of party.AssociationRepository
type MockAssociationRepository struct {
	mock.Mock
}

func (m *MockAssociationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Association, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Association), args.Error(1)
}

func (m *MockAssociationRepository) FindByPartyID(ctx context.Context, tenantID, partyID uuid.UUID) ([]party.Association, error) {
	args := m.Called(ctx, tenantID, partyID)
	return args.Get(0).([]party.Association), args.Error(1)
}

func (m *MockAssociationRepository) Save(ctx context.Context, a *party.Association) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssociationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockMandateRepository is a mock implementation of party.MandateRepository
type MockMandateRepository struct {
	mock.Mock
}

func (m *MockMandateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*party.Mandate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Mandate), args.Error(1)
}

func (m *MockMandateRepository) FindByGrantorID(ctx context.Context, tenantID, grantorID uuid.UUID) ([]party.Mandate, error) {
	args := m.Called(ctx, tenantID, grantorID)
	return args.Get(0).([]party.Mandate), args.Error(1)
}

func (m *MockMandateRepository) Save(ctx context.Context, mandate *party.Mandate) error {
	args := m.Called(ctx, mandate)
	return args.Error(0)
}

func (m *MockMandateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func newAssociationValidator(t *testing.T) *validation.Engine {
	t.Helper()
	items := []reference.Item{
		{Category: reference.CategoryAssociationTypes, Code: "shareholder", Locale: "en-US",
			Scope: reference.GlobalScope(), Name: "Shareholder"},
		{Category: reference.CategoryMandateTypes, Code: "payment", Locale: "en-US",
			Scope: reference.GlobalScope(), Name: "Payment mandate"},
	}
	propertyConstraints := []reference.PropertyConstraint{
		{Owner: reference.OwnerMandate, OwnerType: "payment", PropertyType: "iban",
			Kind: reference.ConstraintRequired},
		{Owner: reference.OwnerMandate, OwnerType: "payment", PropertyType: "iban",
			Qualifier: "shape", Kind: reference.ConstraintPattern, Value: `^[A-Z]{2}\d{2}[A-Z0-9]+$`},
	}
	table, err := reference.NewTable(items, nil, propertyConstraints)
	require.NoError(t, err)
	store := reference.NewStaticStore(table)
	resolver, err := reference.NewResolver(store)
	require.NoError(t, err)
	return validation.NewEngine(resolver, constraint.NewEngine(store, resolver))
}

func newTestAssociationService(t *testing.T) (*AssociationService, *MockPartyRepository, *MockAssociationRepository, *MockMandateRepository, *MockSnapshotStore) {
	t.Helper()
	parties := new(MockPartyRepository)
	associations := new(MockAssociationRepository)
	mandates := new(MockMandateRepository)
	snapshots := new(MockSnapshotStore)
	svc := NewAssociationService(parties, associations, mandates, snapshots,
		newAssociationValidator(t), shared.NopTransactionManager{})
	return svc, parties, associations, mandates, snapshots
}

func anyPerson(t *testing.T, tenantID uuid.UUID) *party.Person {
	t.Helper()
	p, err := party.NewPerson(tenantID, "Grace", "Hopper")
	require.NoError(t, err)
	return p
}

func TestCreateAssociation(t *testing.T) {
	svc, parties, associations, _, snapshots := newTestAssociationService(t)
	tenantID := uuid.New()
	from := anyPerson(t, tenantID)
	to := anyPerson(t, tenantID)

	parties.On("FindByIDForTenant", mock.Anything, tenantID, from.ID).Return(from, nil)
	parties.On("FindByIDForTenant", mock.Anything, tenantID, to.ID).Return(to, nil)
	associations.On("Save", mock.Anything, mock.AnythingOfType("*party.Association")).Return(nil)
	snapshots.On("Append", mock.Anything, mock.MatchedBy(func(s *snapshot.Snapshot) bool {
		return s.EntityType == snapshot.EntityTypeAssociation && s.TenantID == tenantID
	})).Return(nil)

	resp, err := svc.CreateAssociation(context.Background(), tenantID, "en-US", CreateAssociationRequest{
		Type:        "shareholder",
		FromPartyID: from.ID,
		ToPartyID:   to.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "shareholder", resp.Type)
	assert.Equal(t, from.ID, resp.FromPartyID)
	associations.AssertExpectations(t)
	snapshots.AssertExpectations(t)
}

func TestCreateAssociation_UnknownParty(t *testing.T) {
	svc, parties, _, _, _ := newTestAssociationService(t)
	tenantID := uuid.New()
	from := anyPerson(t, tenantID)

	parties.On("FindByIDForTenant", mock.Anything, tenantID, from.ID).Return(from, nil)
	parties.On("FindByIDForTenant", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)

	_, err := svc.CreateAssociation(context.Background(), tenantID, "en-US", CreateAssociationRequest{
		Type:        "shareholder",
		FromPartyID: from.ID,
		ToPartyID:   uuid.New(),
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssociationPropertyRoundTrip(t *testing.T) {
	svc, _, associations, _, snapshots := newTestAssociationService(t)
	tenantID := uuid.New()

	a, err := party.NewAssociation(tenantID, "shareholder", uuid.New(), uuid.New())
	require.NoError(t, err)

	associations.On("FindByIDForTenant", mock.Anything, tenantID, a.ID).Return(a, nil)
	associations.On("Save", mock.Anything, a).Return(nil)
	snapshots.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.SetAssociationProperty(context.Background(), tenantID, a.ID, "en-US", SetPropertyRequest{
		Type:  "ownership_share",
		Value: TypedValueRequest{Kind: "DECIMAL", Value: "25.50"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Properties, 1)
	assert.Equal(t, "25.50", resp.Properties[0].Value.Value)
	assert.True(t, a.HasPropertyWithType("ownership_share"))

	resp, err = svc.RemoveAssociationProperty(context.Background(), tenantID, a.ID, "ownership_share")
	require.NoError(t, err)
	assert.Empty(t, resp.Properties)
	assert.False(t, a.HasPropertyWithType("ownership_share"))

	// Removing an absent property is NOT_FOUND
	_, err = svc.RemoveAssociationProperty(context.Background(), tenantID, a.ID, "ownership_share")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestValidateMandate_PropertyConstraints(t *testing.T) {
	svc, _, _, mandates, snapshots := newTestAssociationService(t)
	tenantID := uuid.New()

	m, err := party.NewMandate(tenantID, "payment", uuid.New(), uuid.New())
	require.NoError(t, err)

	mandates.On("FindByIDForTenant", mock.Anything, tenantID, m.ID).Return(m, nil)
	mandates.On("Save", mock.Anything, m).Return(nil)
	snapshots.On("Append", mock.Anything, mock.Anything).Return(nil)

	// Missing required iban
	resp, err := svc.ValidateMandate(context.Background(), tenantID, m.ID, "en-US")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "REQUIRED", resp.Violations[0].Kind)

	// Malformed iban trips the pattern rule instead
	_, err = svc.SetMandateProperty(context.Background(), tenantID, m.ID, "en-US", SetPropertyRequest{
		Type:  "iban",
		Value: TypedValueRequest{Kind: "STRING", Value: "not-an-iban"},
	})
	require.NoError(t, err)

	resp, err = svc.ValidateMandate(context.Background(), tenantID, m.ID, "en-US")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "PATTERN", resp.Violations[0].Kind)

	// Well formed iban satisfies both rules
	_, err = svc.SetMandateProperty(context.Background(), tenantID, m.ID, "en-US", SetPropertyRequest{
		Type:  "iban",
		Value: TypedValueRequest{Kind: "STRING", Value: "NL91ABNA0417164300"},
	})
	require.NoError(t, err)

	resp, err = svc.ValidateMandate(context.Background(), tenantID, m.ID, "en-US")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Violations)
}

func TestMandateDateRange(t *testing.T) {
	svc, _, _, mandates, _ := newTestAssociationService(t)
	tenantID := uuid.New()

	m, err := party.NewMandate(tenantID, "payment", uuid.New(), uuid.New())
	require.NoError(t, err)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, -1, 0)
	m.ValidFrom = &from
	m.ValidUntil = &until
	require.NoError(t, m.SetProperty(party.NewProperty("iban",
		mustTypedValue(t, "STRING", "NL91ABNA0417164300"))))

	mandates.On("FindByIDForTenant", mock.Anything, tenantID, m.ID).Return(m, nil)

	resp, err := svc.ValidateMandate(context.Background(), tenantID, m.ID, "en-US")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "validUntil", resp.Violations[0].Path)
	assert.Equal(t, "DATE_RANGE", resp.Violations[0].Kind)
}

func TestListMandatesForGrantor(t *testing.T) {
	svc, _, _, mandates, _ := newTestAssociationService(t)
	tenantID := uuid.New()
	grantorID := uuid.New()

	first, err := party.NewMandate(tenantID, "payment", grantorID, uuid.New())
	require.NoError(t, err)
	second, err := party.NewMandate(tenantID, "payment", grantorID, uuid.New())
	require.NoError(t, err)

	mandates.On("FindByGrantorID", mock.Anything, tenantID, grantorID).
		Return([]party.Mandate{*first, *second}, nil)

	resp, err := svc.ListMandatesForGrantor(context.Background(), tenantID, grantorID)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, grantorID, resp[0].GrantorID)
}

func TestDeleteAssociation(t *testing.T) {
	svc, _, associations, _, _ := newTestAssociationService(t)
	tenantID := uuid.New()

	t.Run("existing", func(t *testing.T) {
		a, err := party.NewAssociation(tenantID, "shareholder", uuid.New(), uuid.New())
		require.NoError(t, err)
		associations.On("FindByIDForTenant", mock.Anything, tenantID, a.ID).Return(a, nil)
		associations.On("Delete", mock.Anything, tenantID, a.ID).Return(nil)

		require.NoError(t, svc.DeleteAssociation(context.Background(), tenantID, a.ID))
		associations.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		associations.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

		err := svc.DeleteAssociation(context.Background(), tenantID, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
