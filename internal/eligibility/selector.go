package eligibility

import (
	"math"
	"time"
)

// credentialRank orders a person's records for one credential code. Compared
// lexicographically: verification status first, then currently-valid over
// expired, then latest expiry with non-expiring records ranked highest. This
// keeps a verified, currently-valid record authoritative over a newer but
// rejected or expired resubmission.
type credentialRank struct {
	status     int
	notExpired int
	expiry     int64
}

func rankOf(rec *CredentialRecord, asOf time.Time) credentialRank {
	var r credentialRank

	switch rec.Status {
	case StatusVerified:
		r.status = 3
	case StatusPending:
		r.status = 2
	case StatusRejected:
		r.status = 1
	default:
		r.status = 0
	}

	if rec.ExpiresAt == nil {
		r.notExpired = 1
		r.expiry = math.MaxInt64
	} else {
		if !rec.ExpiresAt.Before(asOf) {
			r.notExpired = 1
		}
		r.expiry = rec.ExpiresAt.Unix()
	}

	return r
}

func (r credentialRank) greaterThan(o credentialRank) bool {
	if r.status != o.status {
		return r.status > o.status
	}
	if r.notExpired != o.notExpired {
		return r.notExpired > o.notExpired
	}
	return r.expiry > o.expiry
}

// SelectAuthoritative picks the single authoritative record among all of a
// person's records for one credential code. The fold is left-stable: only a
// strictly greater rank displaces the current winner, so ties keep the
// earlier-seen record and any permutation of equal-ranked inputs yields the
// same winner. Returns nil when no records exist, which callers treat as
// "missing".
func SelectAuthoritative(records []CredentialRecord, asOf time.Time) *CredentialRecord {
	if len(records) == 0 {
		return nil
	}

	best := &records[0]
	bestRank := rankOf(best, asOf)

	for i := 1; i < len(records); i++ {
		if r := rankOf(&records[i], asOf); r.greaterThan(bestRank) {
			best = &records[i]
			bestRank = r
		}
	}

	return best
}
