package eligibility_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siteops/workforce-compliance/internal/eligibility"
)

var _ = Describe("RulePatch", func() {
	Describe("ParsePatch", func() {
		Context("with a well-formed document", func() {
			It("should decode list mutations and mode changes", func() {
				// When
				patch, err := eligibility.ParsePatch([]byte(`{
					"required_certs_all_add": ["CONFINED-SPACE"],
					"required_trainings_all_remove": ["TBT-BASIC"],
					"enforcement_mode": "WARN"
				}`))

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(patch.CertsAllAdd).To(Equal([]string{"CONFINED-SPACE"}))
				Expect(patch.TrainingsAllRemove).To(Equal([]string{"TBT-BASIC"}))
				Expect(*patch.EnforcementMode).To(Equal(eligibility.ModeWarn))
			})

			It("should distinguish an explicit empty replace from an absent one", func() {
				// When
				patch, err := eligibility.ParsePatch([]byte(`{"required_certs_all_replace": []}`))

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(patch.CertsAllReplace).ToNot(BeNil())
				Expect(*patch.CertsAllReplace).To(BeEmpty())
				Expect(patch.CertsAnyReplace).To(BeNil())
			})
		})

		Context("with an unknown field", func() {
			It("should fail as malformed", func() {
				// When
				_, err := eligibility.ParsePatch([]byte(`{"required_certs_all_append": ["X"]}`))

				// Then
				Expect(err).To(MatchError(eligibility.ErrMalformedPatch))
			})
		})

		Context("with an unknown enforcement mode", func() {
			It("should fail as malformed", func() {
				// When
				_, err := eligibility.ParsePatch([]byte(`{"enforcement_mode": "AUDIT"}`))

				// Then
				Expect(err).To(MatchError(eligibility.ErrMalformedPatch))
			})
		})

		Context("with invalid JSON", func() {
			It("should fail as malformed", func() {
				// When
				_, err := eligibility.ParsePatch([]byte(`{"required_certs_all_add": `))

				// Then
				Expect(err).To(MatchError(eligibility.ErrMalformedPatch))
			})
		})
	})

	Describe("Apply", func() {
		var rule *eligibility.EffectiveRule

		BeforeEach(func() {
			rule = &eligibility.EffectiveRule{
				WorkTypeCode:     "WT-HOTWORK",
				RequiredCertsAll: []string{"WELD-L2", "FIRE-WATCH"},
				Enforcement:      eligibility.ModeBlock,
			}
		})

		It("should append without duplicating existing codes", func() {
			// Given
			patch, err := eligibility.ParsePatch([]byte(`{"required_certs_all_add": ["WELD-L2", "GAS-TEST"]}`))
			Expect(err).ToNot(HaveOccurred())

			// When
			patch.Apply(rule)

			// Then
			Expect(rule.RequiredCertsAll).To(Equal([]string{"WELD-L2", "FIRE-WATCH", "GAS-TEST"}))
		})

		It("should remove codes from the current list", func() {
			// Given
			patch, err := eligibility.ParsePatch([]byte(`{"required_certs_all_remove": ["FIRE-WATCH"]}`))
			Expect(err).ToNot(HaveOccurred())

			// When
			patch.Apply(rule)

			// Then
			Expect(rule.RequiredCertsAll).To(Equal([]string{"WELD-L2"}))
		})

		It("should let replace reset the list regardless of its prior contents", func() {
			// Given
			patch, err := eligibility.ParsePatch([]byte(`{"required_certs_all_replace": ["IRATA-L1", "IRATA-L1"]}`))
			Expect(err).ToNot(HaveOccurred())

			// When
			patch.Apply(rule)

			// Then: replace also dedupes its own payload
			Expect(rule.RequiredCertsAll).To(Equal([]string{"IRATA-L1"}))
		})

		It("should leave untouched lists alone", func() {
			// Given
			patch, err := eligibility.ParsePatch([]byte(`{"required_trainings_all_add": ["TBT-HOT"]}`))
			Expect(err).ToNot(HaveOccurred())

			// When
			patch.Apply(rule)

			// Then
			Expect(rule.RequiredCertsAll).To(Equal([]string{"WELD-L2", "FIRE-WATCH"}))
			Expect(rule.RequiredTrainingsAll).To(Equal([]string{"TBT-HOT"}))
		})

		It("should switch the enforcement mode", func() {
			// Given
			patch, err := eligibility.ParsePatch([]byte(`{"enforcement_mode": "WARN"}`))
			Expect(err).ToNot(HaveOccurred())

			// When
			patch.Apply(rule)

			// Then
			Expect(rule.Enforcement).To(Equal(eligibility.ModeWarn))
		})
	})
})
