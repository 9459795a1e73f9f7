// Package constraint evaluates role-driven rule rows against typed attribute
// and preference values. Constraints are data loaded alongside the reference
// tables; the engine is a small interpreter over the closed set of
// constraint kinds.
package constraint

import (
	"context"
	"regexp"
	"strconv"

	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Context carries the tenant and locale a REFERENCE constraint resolves
// against.
type Context struct {
	Scope  reference.Scope
	Locale string
}

// Engine answers constraint lookups by role, association or mandate type and
// evaluates candidate values against individual rules. Lookups are pure reads
// of the currently loaded generation; evaluation has no side effects.
type Engine struct {
	store    *reference.Store
	resolver *reference.Resolver
	logger   *zap.Logger
}

// EngineOption is a functional option for configuring the engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger for the engine.
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a constraint engine over the given store. The resolver
// serves REFERENCE constraints; it must read from the same store so a rule
// and its code list always come from one generation.
func NewEngine(store *reference.Store, resolver *reference.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		resolver: resolver,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AllForRoles returns every role constraint row.
func (e *Engine) AllForRoles(ctx context.Context) ([]reference.RoleConstraint, error) {
	table, err := e.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return table.RoleConstraints(), nil
}

// ForRole returns the rows whose role type exactly equals the argument, both
// attribute-type and preference-type targeted. No prefix or hierarchy match.
func (e *Engine) ForRole(ctx context.Context, roleType string) ([]reference.RoleConstraint, error) {
	table, err := e.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return table.RoleConstraintsFor(roleType), nil
}

// ForRoleTarget narrows ForRole to one attribute or preference type.
func (e *Engine) ForRoleTarget(ctx context.Context, roleType string, target reference.RoleConstraintTarget, targetType string) ([]reference.RoleConstraint, error) {
	rows, err := e.ForRole(ctx, roleType)
	if err != nil {
		return nil, err
	}
	var matched []reference.RoleConstraint
	for _, row := range rows {
		if row.Target == target && row.TargetType == targetType {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

// ForAssociationType returns the property constraint rows for one association
// type.
func (e *Engine) ForAssociationType(ctx context.Context, associationType string) ([]reference.PropertyConstraint, error) {
	table, err := e.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return table.PropertyConstraintsFor(reference.OwnerAssociation, associationType), nil
}

// ForMandateType returns the property constraint rows for one mandate type.
func (e *Engine) ForMandateType(ctx context.Context, mandateType string) ([]reference.PropertyConstraint, error) {
	table, err := e.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return table.PropertyConstraintsFor(reference.OwnerMandate, mandateType), nil
}

// Evaluate checks a candidate value against one rule. A nil value means the
// attribute or preference is absent: REQUIRED fails, every other kind passes
// vacuously. The only error path is an infrastructure failure while resolving
// a REFERENCE constraint; rule outcomes themselves are never errors.
func (e *Engine) Evaluate(ctx context.Context, rule reference.Rule, value *valueobject.TypedValue, evalCtx Context) (bool, error) {
	if value == nil || value.IsZero() {
		return rule.ConstraintKind() != reference.ConstraintRequired, nil
	}

	switch rule.ConstraintKind() {
	case reference.ConstraintRequired:
		return true, nil

	case reference.ConstraintPattern:
		// Pattern rules apply to string values only; any other kind fails
		// rather than silently passing.
		s, ok := value.StringValue()
		if !ok {
			return false, nil
		}
		re, err := regexp.Compile(rule.ConstraintValue())
		if err != nil {
			e.logger.Warn("unparseable pattern constraint fails closed",
				zap.String("pattern", rule.ConstraintValue()),
				zap.Error(err),
			)
			return false, nil
		}
		return re.MatchString(s), nil

	case reference.ConstraintReference:
		return e.resolver.IsValid(ctx, reference.Category(rule.ConstraintValue()), evalCtx.Scope, evalCtx.Locale, value.String())

	case reference.ConstraintMaxSize:
		limit, err := strconv.Atoi(rule.ConstraintValue())
		if err != nil {
			e.logger.Warn("unparseable max-size constraint fails closed",
				zap.String("value", rule.ConstraintValue()),
				zap.Error(err),
			)
			return false, nil
		}
		return len([]rune(value.String())) <= limit, nil

	case reference.ConstraintMinValue, reference.ConstraintMaxValue:
		candidate, ok := value.AsDecimal()
		if !ok {
			return false, nil
		}
		bound, err := decimal.NewFromString(rule.ConstraintValue())
		if err != nil {
			e.logger.Warn("unparseable numeric bound fails closed",
				zap.String("value", rule.ConstraintValue()),
				zap.Error(err),
			)
			return false, nil
		}
		if rule.ConstraintKind() == reference.ConstraintMinValue {
			return candidate.GreaterThanOrEqual(bound), nil
		}
		return candidate.LessThanOrEqual(bound), nil

	default:
		e.logger.Warn("unknown constraint kind fails closed",
			zap.String("kind", string(rule.ConstraintKind())),
		)
		return false, nil
	}
}
