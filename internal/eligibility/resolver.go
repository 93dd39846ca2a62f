package eligibility

import (
	"context"
	"log/slog"
	"sort"
)

// RuleStore supplies base rules and override chains. Implementations are
// read-only; the engine never mutates rule data.
type RuleStore interface {
	WorkTypeRuleByCode(ctx context.Context, code string) (*BaseRule, error)
	ActiveOverrides(ctx context.Context, workTypeCode, scope, scopeRef string) ([]OverrideRecord, error)
}

// Resolver folds a work type's base rule and its scoped override chain into
// one effective rule. Resolution is deterministic: same base, same ordered
// overrides, same result, no time-dependent state.
type Resolver struct {
	store  RuleStore
	logger *slog.Logger
}

func NewResolver(store RuleStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, workTypeCode, scope, scopeRef string) (*EffectiveRule, error) {
	base, err := r.store.WorkTypeRuleByCode(ctx, workTypeCode)
	if err != nil {
		return nil, err
	}
	if base == nil || !base.Active {
		return nil, ErrWorkTypeNotFound
	}

	overrides, err := r.store.ActiveOverrides(ctx, workTypeCode, scope, scopeRef)
	if err != nil {
		return nil, err
	}
	sortOverrides(overrides)

	rule := &EffectiveRule{
		WorkTypeCode:         base.WorkTypeCode,
		RequiredCertsAll:     append([]string(nil), base.RequiredCertsAll...),
		RequiredCertsAny:     append([]string(nil), base.RequiredCertsAny...),
		RequiredTrainingsAll: append([]string(nil), base.RequiredTrainingsAll...),
		RequiredTrainingsAny: append([]string(nil), base.RequiredTrainingsAny...),
		Enforcement:          base.Enforcement,
	}

	for _, o := range overrides {
		patch, err := ParsePatch(o.Patch)
		if err != nil {
			// Never fold a partial chain: a bad patch fails the whole
			// resolution.
			r.logger.Error("override patch rejected",
				"override_id", o.ID,
				"work_type", workTypeCode,
				"scope", scope,
				"scope_ref", scopeRef,
				"error", err)
			return nil, err
		}
		patch.Apply(rule)
	}

	rule.OverridesApplied = len(overrides)
	return rule, nil
}

// sortOverrides orders the chain by approval timestamp ascending with
// unapproved (nil) entries last, then creation timestamp ascending. The store
// query orders the same way; sorting again here pins the invariant regardless
// of the store implementation.
func sortOverrides(overrides []OverrideRecord) {
	sort.SliceStable(overrides, func(i, j int) bool {
		a, b := overrides[i], overrides[j]
		switch {
		case a.ApprovedAt == nil && b.ApprovedAt == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ApprovedAt == nil:
			return false
		case b.ApprovedAt == nil:
			return true
		case a.ApprovedAt.Equal(*b.ApprovedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ApprovedAt.Before(*b.ApprovedAt)
		}
	})
}
