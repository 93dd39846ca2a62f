package eligibility

import (
	"fmt"
	"strings"
	"time"
)

// AnyOfPrefix marks the synthetic missing entry emitted when an any-of group
// is unsatisfied, so callers can tell "you need one of X/Y/Z" apart from
// "you're missing X specifically".
const AnyOfPrefix = "one-of:"

// PersonCredentials holds the authoritative record per credential code for
// one assignee, after selection.
type PersonCredentials struct {
	Certs     map[string]*CredentialRecord
	Trainings map[string]*CredentialRecord
}

// Evaluate applies the effective rule to each assignee's selected credentials
// and returns per-person strict verdicts plus the strict team verdict (AND
// over assignees). Missing and expired credentials are normal outputs here,
// never errors.
func Evaluate(rule *EffectiveRule, assignees []int64, selected map[int64]PersonCredentials, asOf time.Time) ([]AssigneeResult, bool) {
	results := make([]AssigneeResult, 0, len(assignees))
	teamStrict := true

	for _, personID := range assignees {
		creds := selected[personID]
		res := AssigneeResult{
			PersonID:         personID,
			MissingCerts:     []string{},
			MissingTrainings: []string{},
			ExpiringSoon:     []string{},
		}

		evalAllOf(rule.RequiredCertsAll, creds.Certs, KindCertification, asOf, &res.MissingCerts, &res.ExpiringSoon)
		evalAnyOf(rule.RequiredCertsAny, creds.Certs, asOf, &res.MissingCerts)
		evalAllOf(rule.RequiredTrainingsAll, creds.Trainings, KindTraining, asOf, &res.MissingTrainings, &res.ExpiringSoon)
		evalAnyOf(rule.RequiredTrainingsAny, creds.Trainings, asOf, &res.MissingTrainings)

		res.StrictEligible = len(res.MissingCerts) == 0 && len(res.MissingTrainings) == 0
		res.Eligible = res.StrictEligible
		teamStrict = teamStrict && res.StrictEligible

		results = append(results, res)
	}

	return results, teamStrict
}

func evalAllOf(required []string, byCode map[string]*CredentialRecord, kind string, asOf time.Time, missing *[]string, expiring *[]string) {
	for _, code := range required {
		rec := byCode[code]
		if !satisfies(rec, asOf) {
			*missing = append(*missing, code)
			continue
		}

		if note, ok := expiryNote(rec, kind, asOf); ok {
			*expiring = append(*expiring, note)
		}
	}
}

// evalAnyOf is satisfied by any verified, non-expired record among the listed
// codes; otherwise it emits one synthetic entry naming the whole group.
func evalAnyOf(required []string, byCode map[string]*CredentialRecord, asOf time.Time, missing *[]string) {
	if len(required) == 0 {
		return
	}

	for _, code := range required {
		if satisfies(byCode[code], asOf) {
			return
		}
	}

	*missing = append(*missing, AnyOfPrefix+strings.Join(required, "|"))
}

// satisfies reports whether a record counts toward a requirement: it must
// exist, be verified, and not be expired. Expiry exactly on asOf counts as
// still valid.
func satisfies(rec *CredentialRecord, asOf time.Time) bool {
	if rec == nil || rec.Status != StatusVerified {
		return false
	}
	if rec.ExpiresAt != nil && rec.ExpiresAt.Before(asOf) {
		return false
	}
	return true
}

// expiryNote annotates records inside their alert window as "{code}:D-{days}".
// Day zero is within range.
func expiryNote(rec *CredentialRecord, kind string, asOf time.Time) (string, bool) {
	if rec.ExpiresAt == nil {
		return "", false
	}

	days := daysBetween(asOf, *rec.ExpiresAt)
	if days < 0 || days > maxAlertDays(rec, kind) {
		return "", false
	}

	return fmt.Sprintf("%s:D-%d", rec.Code, days), true
}

// maxAlertDays picks the widest configured threshold: record-level first,
// then the credential definition, then the kind default.
func maxAlertDays(rec *CredentialRecord, kind string) int {
	thresholds := rec.AlertDays
	if len(thresholds) == 0 {
		thresholds = rec.DefinitionAlertDays
	}
	if len(thresholds) == 0 {
		if kind == KindTraining {
			return DefaultTrainingAlertDays
		}
		return DefaultCertAlertDays
	}

	max := thresholds[0]
	for _, t := range thresholds[1:] {
		if t > max {
			max = t
		}
	}
	return max
}

// ApplyEnforcement reinterprets strict verdicts under the resolved mode.
// BLOCK passes them through; WARN forces every externally visible eligible
// flag to true while leaving the missing and expiring lists untouched for
// visibility and downstream alerting.
func ApplyEnforcement(results []AssigneeResult, teamStrict bool, mode string) ([]AssigneeResult, bool) {
	if mode != ModeWarn {
		return results, teamStrict
	}

	for i := range results {
		results[i].Eligible = true
	}
	return results, true
}
