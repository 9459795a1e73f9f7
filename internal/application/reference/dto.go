package reference

import (
	"github.com/google/uuid"

	"github.com/mdm/backend/internal/domain/reference"
)

// ItemResponse represents a resolved reference item in API responses
type ItemResponse struct {
	Category       string     `json:"category"`
	Code           string     `json:"code"`
	Locale         string     `json:"locale"`
	Global         bool       `json:"global"`
	TenantID       *uuid.UUID `json:"tenant_id,omitempty"`
	SortIndex      *int       `json:"sort_index,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	CountryOfIssue string     `json:"country_of_issue,omitempty"`
	PartyTypes     []string   `json:"party_types,omitempty"`
	ValueKind      string     `json:"value_kind,omitempty"`
	UnitType       string     `json:"unit_type,omitempty"`
	AppliesTo      string     `json:"applies_to,omitempty"`
}

// ToItemResponse converts a domain reference item to its API shape
func ToItemResponse(item reference.Item) ItemResponse {
	resp := ItemResponse{
		Category:       string(item.Category),
		Code:           item.Code,
		Locale:         item.Locale,
		Global:         item.Scope.IsGlobal(),
		SortIndex:      item.SortIndex,
		Name:           item.Name,
		Description:    item.Description,
		CountryOfIssue: item.CountryOfIssue,
		PartyTypes:     item.PartyTypes,
		ValueKind:      string(item.ValueKind),
		UnitType:       string(item.UnitType),
		AppliesTo:      item.AppliesTo,
	}
	if tenantID, ok := item.Scope.TenantID(); ok {
		resp.TenantID = &tenantID
	}
	return resp
}

// ToItemResponses converts a resolved list preserving its order
func ToItemResponses(items []reference.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out
}

// ValidityResponse answers a code validity check
type ValidityResponse struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Valid    bool   `json:"valid"`
}

// RoleConstraintResponse represents one role-driven constraint row
type RoleConstraintResponse struct {
	RoleType   string `json:"role_type"`
	Target     string `json:"target"`
	TargetType string `json:"target_type"`
	Qualifier  string `json:"qualifier,omitempty"`
	Kind       string `json:"kind"`
	Value      string `json:"value,omitempty"`
}

// ToRoleConstraintResponse converts a domain constraint row to its API shape
func ToRoleConstraintResponse(c reference.RoleConstraint) RoleConstraintResponse {
	return RoleConstraintResponse{
		RoleType:   c.RoleType,
		Target:     string(c.Target),
		TargetType: c.TargetType,
		Qualifier:  c.Qualifier,
		Kind:       string(c.Kind),
		Value:      c.Value,
	}
}

// ToRoleConstraintResponses converts a constraint row list
func ToRoleConstraintResponses(rows []reference.RoleConstraint) []RoleConstraintResponse {
	out := make([]RoleConstraintResponse, len(rows))
	for i, c := range rows {
		out[i] = ToRoleConstraintResponse(c)
	}
	return out
}

// PropertyConstraintResponse represents one association/mandate constraint row
type PropertyConstraintResponse struct {
	Owner        string `json:"owner"`
	OwnerType    string `json:"owner_type"`
	PropertyType string `json:"property_type"`
	Qualifier    string `json:"qualifier,omitempty"`
	Kind         string `json:"kind"`
	Value        string `json:"value,omitempty"`
}

// ToPropertyConstraintResponses converts a property constraint row list
func ToPropertyConstraintResponses(rows []reference.PropertyConstraint) []PropertyConstraintResponse {
	out := make([]PropertyConstraintResponse, len(rows))
	for i, c := range rows {
		out[i] = PropertyConstraintResponse{
			Owner:        string(c.Owner),
			OwnerType:    c.OwnerType,
			PropertyType: c.PropertyType,
			Qualifier:    c.Qualifier,
			Kind:         string(c.Kind),
			Value:        c.Value,
		}
	}
	return out
}
