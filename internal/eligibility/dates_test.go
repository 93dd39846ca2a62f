package eligibility_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siteops/workforce-compliance/internal/eligibility"
)

var _ = Describe("NormalizeAsOf", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2024, 6, 15, 18, 30, 45, 0, time.UTC)
	})

	Context("when given a plain calendar date", func() {
		It("should interpret it as UTC midnight, never local midnight", func() {
			// When
			result, err := eligibility.NormalizeAsOf("2024-03-10", now)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
			Expect(result.Location()).To(Equal(time.UTC))
		})
	})

	Context("when given an RFC3339 timestamp with an offset", func() {
		It("should truncate to the UTC calendar day of the instant", func() {
			// Given: 01:30 on June 2nd in +07:00 is still June 1st in UTC
			result, err := eligibility.NormalizeAsOf("2024-06-02T01:30:00+07:00", now)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("should drop the time-of-day component", func() {
			// When
			result, err := eligibility.NormalizeAsOf("2024-06-15T23:59:59Z", now)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
		})
	})

	Context("when given no date", func() {
		It("should fall back to the current UTC day", func() {
			// When
			result, err := eligibility.NormalizeAsOf("", now)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
		})
	})

	Context("when given garbage", func() {
		It("should reject it as an invalid date", func() {
			// When
			_, err := eligibility.NormalizeAsOf("next tuesday", now)

			// Then
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(eligibility.ErrInvalidDate))
		})

		It("should reject a ten-character string that is not a date", func() {
			// When
			_, err := eligibility.NormalizeAsOf("2024-13-40", now)

			// Then
			Expect(err).To(MatchError(eligibility.ErrInvalidDate))
		})
	})

	Context("determinism", func() {
		It("should return the same instant for equivalent inputs", func() {
			// Given
			fromDate, err1 := eligibility.NormalizeAsOf("2024-06-01", now)
			fromStamp, err2 := eligibility.NormalizeAsOf("2024-06-01T15:45:00Z", now)

			// Then
			Expect(err1).ToNot(HaveOccurred())
			Expect(err2).ToNot(HaveOccurred())
			Expect(fromDate).To(Equal(fromStamp))
		})
	})
})
