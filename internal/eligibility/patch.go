package eligibility

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RulePatch is the typed form of an override's patch document. Each
// requirement list can independently be replaced outright or mutated with
// add/remove sets; the enforcement mode can be replaced. Absent fields mean
// "no change".
type RulePatch struct {
	CertsAllAdd         []string  `json:"required_certs_all_add,omitempty"`
	CertsAllRemove      []string  `json:"required_certs_all_remove,omitempty"`
	CertsAllReplace     *[]string `json:"required_certs_all_replace,omitempty"`
	CertsAnyAdd         []string  `json:"required_certs_any_add,omitempty"`
	CertsAnyRemove      []string  `json:"required_certs_any_remove,omitempty"`
	CertsAnyReplace     *[]string `json:"required_certs_any_replace,omitempty"`
	TrainingsAllAdd     []string  `json:"required_trainings_all_add,omitempty"`
	TrainingsAllRemove  []string  `json:"required_trainings_all_remove,omitempty"`
	TrainingsAllReplace *[]string `json:"required_trainings_all_replace,omitempty"`
	TrainingsAnyAdd     []string  `json:"required_trainings_any_add,omitempty"`
	TrainingsAnyRemove  []string  `json:"required_trainings_any_remove,omitempty"`
	TrainingsAnyReplace *[]string `json:"required_trainings_any_replace,omitempty"`
	EnforcementMode     *string   `json:"enforcement_mode,omitempty"`
}

// ParsePatch decodes and validates a patch document. Unknown fields and
// invalid enforcement modes are malformed: resolution must fail atomically
// rather than fold a half-understood patch.
func ParsePatch(raw []byte) (*RulePatch, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var p RulePatch
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPatch, err)
	}

	if p.EnforcementMode != nil && *p.EnforcementMode != ModeBlock && *p.EnforcementMode != ModeWarn {
		return nil, fmt.Errorf("%w: unknown enforcement mode %q", ErrMalformedPatch, *p.EnforcementMode)
	}

	return &p, nil
}

type listPatch struct {
	add     []string
	remove  []string
	replace *[]string
}

// Apply folds the patch into the running rule. Replace resets a list at this
// point in the chain; add/remove act on the current, already-patched list,
// not the original base.
func (p *RulePatch) Apply(rule *EffectiveRule) {
	rule.RequiredCertsAll = applyList(rule.RequiredCertsAll, listPatch{p.CertsAllAdd, p.CertsAllRemove, p.CertsAllReplace})
	rule.RequiredCertsAny = applyList(rule.RequiredCertsAny, listPatch{p.CertsAnyAdd, p.CertsAnyRemove, p.CertsAnyReplace})
	rule.RequiredTrainingsAll = applyList(rule.RequiredTrainingsAll, listPatch{p.TrainingsAllAdd, p.TrainingsAllRemove, p.TrainingsAllReplace})
	rule.RequiredTrainingsAny = applyList(rule.RequiredTrainingsAny, listPatch{p.TrainingsAnyAdd, p.TrainingsAnyRemove, p.TrainingsAnyReplace})

	if p.EnforcementMode != nil {
		rule.Enforcement = *p.EnforcementMode
	}
}

func applyList(current []string, lp listPatch) []string {
	if lp.replace != nil {
		return dedupe(*lp.replace)
	}

	out := make([]string, 0, len(current)+len(lp.add))
	out = append(out, current...)
	for _, code := range lp.add {
		if !contains(out, code) {
			out = append(out, code)
		}
	}

	if len(lp.remove) == 0 {
		return out
	}

	kept := out[:0]
	for _, code := range out {
		if !contains(lp.remove, code) {
			kept = append(kept, code)
		}
	}
	return kept
}

func dedupe(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if !contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
