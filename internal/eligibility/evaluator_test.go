package eligibility_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siteops/workforce-compliance/internal/eligibility"
)

var _ = Describe("Evaluate", func() {
	var (
		asOf time.Time
		rule *eligibility.EffectiveRule
	)

	expires := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	verified := func(kind, code string, expiresAt *time.Time) *eligibility.CredentialRecord {
		return &eligibility.CredentialRecord{
			PersonID:  1,
			Kind:      kind,
			Code:      code,
			Status:    eligibility.StatusVerified,
			ExpiresAt: expiresAt,
		}
	}

	BeforeEach(func() {
		asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		rule = &eligibility.EffectiveRule{
			WorkTypeCode:     "WT-HOTWORK",
			RequiredCertsAll: []string{"WELD-L2"},
			Enforcement:      eligibility.ModeBlock,
		}
	})

	Context("all-of requirements", func() {
		It("should pass a person holding every required credential", func() {
			// Given
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", expires(2025, 6, 1)),
				}},
			}

			// When
			results, teamStrict := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(teamStrict).To(BeTrue())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Eligible).To(BeTrue())
			Expect(results[0].MissingCerts).To(BeEmpty())
		})

		It("should report a missing credential by code", func() {
			// Given: no credentials at all
			selected := map[int64]eligibility.PersonCredentials{}

			// When
			results, teamStrict := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(teamStrict).To(BeFalse())
			Expect(results[0].Eligible).To(BeFalse())
			Expect(results[0].MissingCerts).To(Equal([]string{"WELD-L2"}))
		})

		It("should treat an expired credential as missing", func() {
			// Given
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", expires(2024, 5, 1)),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].MissingCerts).To(Equal([]string{"WELD-L2"}))
		})

		It("should treat a pending credential as missing", func() {
			// Given
			rec := verified(eligibility.KindCertification, "WELD-L2", expires(2025, 6, 1))
			rec.Status = eligibility.StatusPending
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{"WELD-L2": rec}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].Eligible).To(BeFalse())
		})

		It("should accept a credential expiring exactly on the reference day", func() {
			// Given
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", expires(2024, 6, 1)),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then: eligible, with a day-zero expiry note
			Expect(results[0].Eligible).To(BeTrue())
			Expect(results[0].ExpiringSoon).To(Equal([]string{"WELD-L2:D-0"}))
		})
	})

	Context("any-of requirements", func() {
		BeforeEach(func() {
			rule = &eligibility.EffectiveRule{
				WorkTypeCode:     "WT-RIGGING",
				RequiredCertsAny: []string{"RIG-L1", "RIG-L2"},
				Enforcement:      eligibility.ModeBlock,
			}
		})

		It("should be satisfied by any one of the listed credentials", func() {
			// Given: holds only the second alternative
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"RIG-L2": verified(eligibility.KindCertification, "RIG-L2", expires(2025, 1, 1)),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].Eligible).To(BeTrue())
		})

		It("should emit one synthetic entry naming the whole group when unsatisfied", func() {
			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, nil, asOf)

			// Then
			Expect(results[0].MissingCerts).To(Equal([]string{"one-of:RIG-L1|RIG-L2"}))
		})
	})

	Context("expiring-soon annotations", func() {
		It("should annotate a credential inside the default certification window", func() {
			// Given: expires 45 days out, default window is 90
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", expires(2024, 7, 16)),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].Eligible).To(BeTrue())
			Expect(results[0].ExpiringSoon).To(Equal([]string{"WELD-L2:D-45"}))
		})

		It("should not annotate a credential outside the window", func() {
			// Given: 91 days out
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", expires(2024, 8, 31)),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].ExpiringSoon).To(BeEmpty())
		})

		It("should use the training default window for trainings", func() {
			// Given: training 75 days out is outside the 60-day default
			rule = &eligibility.EffectiveRule{
				WorkTypeCode:         "WT-1",
				RequiredTrainingsAll: []string{"TBT-HOT"},
				Enforcement:          eligibility.ModeBlock,
			}
			selected := map[int64]eligibility.PersonCredentials{
				1: {Trainings: map[string]*eligibility.CredentialRecord{
					"TBT-HOT": verified(eligibility.KindTraining, "TBT-HOT", expires(2024, 8, 15)),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].ExpiringSoon).To(BeEmpty())
		})

		It("should let record-level thresholds override the definition's", func() {
			// Given: record says 30 days, definition says 120
			rec := verified(eligibility.KindCertification, "WELD-L2", expires(2024, 7, 16))
			rec.AlertDays = []int{7, 30}
			rec.DefinitionAlertDays = []int{120}
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{"WELD-L2": rec}},
			}

			// When: 45 days out is outside the record's widest window
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].ExpiringSoon).To(BeEmpty())
		})

		It("should fall back to the definition thresholds when the record has none", func() {
			// Given
			rec := verified(eligibility.KindCertification, "WELD-L2", expires(2024, 7, 16))
			rec.DefinitionAlertDays = []int{60}
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{"WELD-L2": rec}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].ExpiringSoon).To(Equal([]string{"WELD-L2:D-45"}))
		})

		It("should never annotate a non-expiring credential", func() {
			// Given
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", nil),
				}},
			}

			// When
			results, _ := eligibility.Evaluate(rule, []int64{1}, selected, asOf)

			// Then
			Expect(results[0].Eligible).To(BeTrue())
			Expect(results[0].ExpiringSoon).To(BeEmpty())
		})
	})

	Context("team verdict", func() {
		It("should be the AND over all assignees", func() {
			// Given: person 1 qualified, person 2 not
			selected := map[int64]eligibility.PersonCredentials{
				1: {Certs: map[string]*eligibility.CredentialRecord{
					"WELD-L2": verified(eligibility.KindCertification, "WELD-L2", expires(2025, 6, 1)),
				}},
			}

			// When
			results, teamStrict := eligibility.Evaluate(rule, []int64{1, 2}, selected, asOf)

			// Then
			Expect(teamStrict).To(BeFalse())
			Expect(results[0].Eligible).To(BeTrue())
			Expect(results[1].Eligible).To(BeFalse())
		})
	})
})

var _ = Describe("ApplyEnforcement", func() {
	var failing []eligibility.AssigneeResult

	BeforeEach(func() {
		failing = []eligibility.AssigneeResult{
			{PersonID: 1, Eligible: false, MissingCerts: []string{"WELD-L2"}, MissingTrainings: []string{}, ExpiringSoon: []string{}},
		}
	})

	Context("under BLOCK", func() {
		It("should pass strict verdicts through unchanged", func() {
			// When
			results, team := eligibility.ApplyEnforcement(failing, false, eligibility.ModeBlock)

			// Then
			Expect(team).To(BeFalse())
			Expect(results[0].Eligible).To(BeFalse())
		})
	})

	Context("under WARN", func() {
		It("should force eligibility while keeping the gap lists intact", func() {
			// When
			results, team := eligibility.ApplyEnforcement(failing, false, eligibility.ModeWarn)

			// Then
			Expect(team).To(BeTrue())
			Expect(results[0].Eligible).To(BeTrue())
			Expect(results[0].MissingCerts).To(Equal([]string{"WELD-L2"}))
		})
	})
})
