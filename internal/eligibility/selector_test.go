package eligibility_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siteops/workforce-compliance/internal/eligibility"
)

var _ = Describe("SelectAuthoritative", func() {
	var asOf time.Time

	expires := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	record := func(status string, expiresAt *time.Time) eligibility.CredentialRecord {
		return eligibility.CredentialRecord{
			PersonID:  42,
			Kind:      eligibility.KindCertification,
			Code:      "WAH-L1",
			Status:    status,
			ExpiresAt: expiresAt,
		}
	}

	BeforeEach(func() {
		asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	})

	Context("with no records", func() {
		It("should return nil, meaning missing", func() {
			Expect(eligibility.SelectAuthoritative(nil, asOf)).To(BeNil())
		})
	})

	Context("status preference", func() {
		It("should prefer a verified record over a pending one with a later expiry", func() {
			// Given
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusPending, expires(2026, 1, 1)),
				record(eligibility.StatusVerified, expires(2024, 9, 1)),
			}

			// When
			selected := eligibility.SelectAuthoritative(records, asOf)

			// Then
			Expect(selected).ToNot(BeNil())
			Expect(selected.Status).To(Equal(eligibility.StatusVerified))
		})

		It("should prefer pending over rejected", func() {
			// Given
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusRejected, expires(2026, 1, 1)),
				record(eligibility.StatusPending, expires(2024, 9, 1)),
			}

			// When
			selected := eligibility.SelectAuthoritative(records, asOf)

			// Then
			Expect(selected.Status).To(Equal(eligibility.StatusPending))
		})
	})

	Context("expiry preference within one status", func() {
		It("should prefer a currently valid record over an expired one", func() {
			// Given
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusVerified, expires(2024, 1, 1)),
				record(eligibility.StatusVerified, expires(2024, 7, 1)),
			}

			// When
			selected := eligibility.SelectAuthoritative(records, asOf)

			// Then
			Expect(selected.ExpiresAt.Equal(*expires(2024, 7, 1))).To(BeTrue())
		})

		It("should treat expiry exactly on the reference day as still valid", func() {
			// Given: one record expires on asOf itself, one the day before
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusVerified, expires(2024, 5, 31)),
				record(eligibility.StatusVerified, expires(2024, 6, 1)),
			}

			// When
			selected := eligibility.SelectAuthoritative(records, asOf)

			// Then
			Expect(selected.ExpiresAt.Equal(*expires(2024, 6, 1))).To(BeTrue())
		})

		It("should rank a non-expiring record above any dated one", func() {
			// Given
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusVerified, expires(2099, 1, 1)),
				record(eligibility.StatusVerified, nil),
			}

			// When
			selected := eligibility.SelectAuthoritative(records, asOf)

			// Then
			Expect(selected.ExpiresAt).To(BeNil())
		})

		It("should prefer the later expiry among equally expired records", func() {
			// Given: both expired, later one is less stale
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusVerified, expires(2023, 1, 1)),
				record(eligibility.StatusVerified, expires(2024, 3, 1)),
			}

			// When
			selected := eligibility.SelectAuthoritative(records, asOf)

			// Then
			Expect(selected.ExpiresAt.Equal(*expires(2024, 3, 1))).To(BeTrue())
		})
	})

	Context("stability", func() {
		It("should pick the same record regardless of input order", func() {
			// Given
			a := record(eligibility.StatusVerified, expires(2024, 7, 1))
			b := record(eligibility.StatusVerified, expires(2025, 7, 1))
			c := record(eligibility.StatusPending, nil)

			permutations := [][]eligibility.CredentialRecord{
				{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
			}

			// When / Then: b wins in every ordering
			for _, perm := range permutations {
				selected := eligibility.SelectAuthoritative(perm, asOf)
				Expect(selected.ExpiresAt.Equal(*expires(2025, 7, 1))).To(BeTrue())
			}
		})

		It("should keep the earlier record when ranks tie exactly", func() {
			// Given: identical rank, different issue dates
			first := record(eligibility.StatusVerified, expires(2024, 7, 1))
			first.IssuedAt = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
			second := record(eligibility.StatusVerified, expires(2024, 7, 1))
			second.IssuedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

			// When
			selected := eligibility.SelectAuthoritative([]eligibility.CredentialRecord{first, second}, asOf)

			// Then
			Expect(selected.IssuedAt).To(Equal(first.IssuedAt))
		})

		It("should be idempotent: reselecting the winner alone returns it", func() {
			// Given
			records := []eligibility.CredentialRecord{
				record(eligibility.StatusRejected, nil),
				record(eligibility.StatusVerified, expires(2024, 8, 1)),
			}

			// When
			winner := eligibility.SelectAuthoritative(records, asOf)
			again := eligibility.SelectAuthoritative([]eligibility.CredentialRecord{*winner}, asOf)

			// Then
			Expect(again.Status).To(Equal(winner.Status))
			Expect(again.ExpiresAt.Equal(*winner.ExpiresAt)).To(BeTrue())
		})
	})
})
