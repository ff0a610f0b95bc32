package rbac

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/observability"
)

// ruleOutcome classifies how rule resolution ended for a principal.
type ruleOutcome int

const (
	// ruleApplied means a configured rule was found and decides the grants.
	ruleApplied ruleOutcome = iota
	// ruleIneligible means the principal cannot hold a rule at all
	// (anonymous, inactive, or no role assigned).
	ruleIneligible
	// ruleAbsent means an eligible principal has no rule configured for
	// the resource. This is an administration gap, not a request problem,
	// and is surfaced distinctly in logs and metrics.
	ruleAbsent
)

// Enforcer decides whether a principal may perform an action on a resource.
// It holds no state across requests: the applicable rule is re-read fresh
// for every decision. A missing rule is a deny with a nil error; a store
// failure propagates so the boundary can answer with a server error instead
// of a silent deny.
type Enforcer struct {
	rules   RuleStore
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEnforcer constructs an Enforcer. metrics and logger may be nil.
func NewEnforcer(rules RuleStore, metrics *observability.Metrics, logger *slog.Logger) *Enforcer {
	return &Enforcer{rules: rules, metrics: metrics, logger: logger}
}

// rule resolves the applicable rule for the principal and classifies the
// outcome when none applies.
func (e *Enforcer) rule(ctx context.Context, p auth.Principal, resource string) (Rule, ruleOutcome, error) {
	if p.IsAnonymous() || !p.Account().IsActive {
		return Rule{}, ruleIneligible, nil
	}
	roleID := p.Account().RoleID
	if roleID == 0 {
		return Rule{}, ruleIneligible, nil
	}
	rule, err := e.rules.GetRule(ctx, roleID, resource)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			if e.logger != nil {
				e.logger.Warn("no access rule configured",
					slog.Int64("role_id", roleID),
					slog.String("resource", resource))
			}
			return Rule{}, ruleAbsent, nil
		}
		return Rule{}, ruleIneligible, err
	}
	return rule, ruleApplied, nil
}

func (e *Enforcer) record(resource string, action Action, outcome ruleOutcome, allowed bool) {
	decision := observability.DecisionDeny
	switch {
	case allowed:
		decision = observability.DecisionAllow
	case outcome == ruleAbsent:
		decision = observability.DecisionNoRule
	}
	e.metrics.AuthzDecision(resource, string(action), decision)
}

// AuthorizeCollection is the coarse gate applied before listing records or
// accepting a creation payload. It does not know which record will be
// touched, so own and all grants count the same here.
func (e *Enforcer) AuthorizeCollection(ctx context.Context, p auth.Principal, resource string, action Action) (bool, error) {
	rule, outcome, err := e.rule(ctx, p, resource)
	if err != nil {
		return false, err
	}
	allowed := false
	if outcome == ruleApplied {
		switch action {
		case ActionRead:
			allowed = rule.Read || rule.ReadAll
		case ActionCreate:
			allowed = rule.Create
		case ActionUpdate:
			allowed = rule.Update || rule.UpdateAll
		case ActionDelete:
			allowed = rule.Delete || rule.DeleteAll
		}
	}
	e.record(resource, action, outcome, allowed)
	return allowed, nil
}

// AuthorizeObject decides an action against a specific record. The *_all
// grants are evaluated first and are never weakened by an ownership
// mismatch; only when no all grant applies does the plain grant combined
// with ownership decide. Create has no object-level variant and any action
// outside read/update/delete is denied.
func (e *Enforcer) AuthorizeObject(ctx context.Context, p auth.Principal, resource string, action Action, rec Owned) (bool, error) {
	rule, outcome, err := e.rule(ctx, p, resource)
	if err != nil {
		return false, err
	}
	allowed := false
	if outcome == ruleApplied && rec != nil {
		owns := rec.OwnedBy() == p.AccountID()
		switch action {
		case ActionRead:
			allowed = rule.ReadAll || (rule.Read && owns)
		case ActionUpdate:
			allowed = rule.UpdateAll || (rule.Update && owns)
		case ActionDelete:
			allowed = rule.DeleteAll || (rule.Delete && owns)
		}
	}
	e.record(resource, action, outcome, allowed)
	return allowed, nil
}

// CanReadAll reports whether list queries may span all records of the
// resource. When false, callers must narrow the result set to records the
// principal owns; the narrowing itself is executed by the record store.
func (e *Enforcer) CanReadAll(ctx context.Context, p auth.Principal, resource string) (bool, error) {
	rule, outcome, err := e.rule(ctx, p, resource)
	if err != nil {
		return false, err
	}
	return outcome == ruleApplied && rule.ReadAll, nil
}
