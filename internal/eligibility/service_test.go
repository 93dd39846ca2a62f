package eligibility_test

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siteops/workforce-compliance/internal"
	"github.com/siteops/workforce-compliance/internal/core/events"
	"github.com/siteops/workforce-compliance/internal/eligibility"
)

type mockCredentialStore struct {
	records map[string][]eligibility.CredentialRecord
	err     error
	calls   int
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{records: make(map[string][]eligibility.CredentialRecord)}
}

func (m *mockCredentialStore) PersonCredentials(_ context.Context, personIDs []int64, kind string) ([]eligibility.CredentialRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []eligibility.CredentialRecord
	for _, rec := range m.records[kind] {
		for _, id := range personIDs {
			if rec.PersonID == id {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("EligibilityService", func() {
	var (
		ruleStore *mockRuleStore
		credStore *mockCredentialStore
		publisher *mockPublisher
		service   *eligibility.Service
		ctx       context.Context
	)

	assignees := func(ids ...string) []json.Number {
		out := make([]json.Number, 0, len(ids))
		for _, id := range ids {
			out = append(out, json.Number(id))
		}
		return out
	}

	validRequest := func() eligibility.CheckRequestDTO {
		return eligibility.CheckRequestDTO{
			Scope:        "project",
			ScopeRef:     "P-100",
			WorkTypeCode: "WT-HOTWORK",
			AsOfDate:     "2024-06-01",
			Assignees:    assignees("1", "2"),
		}
	}

	expires := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	BeforeEach(func() {
		ruleStore = newMockRuleStore()
		credStore = newMockCredentialStore()
		publisher = &mockPublisher{}
		service = eligibility.NewService(ruleStore, credStore, publisher, testLogger())
		ctx = context.Background()

		ruleStore.rules["WT-HOTWORK"] = &eligibility.BaseRule{
			WorkTypeCode:     "WT-HOTWORK",
			Name:             "Hot work",
			RequiredCertsAll: []string{"WELD-L2"},
			Enforcement:      eligibility.ModeBlock,
			Active:           true,
		}

		credStore.records[eligibility.KindCertification] = []eligibility.CredentialRecord{
			{
				PersonID:  1,
				Kind:      eligibility.KindCertification,
				Code:      "WELD-L2",
				Status:    eligibility.StatusVerified,
				ExpiresAt: expires(2025, 6, 1),
			},
		}
	})

	Describe("Check", func() {
		Context("with a qualified and an unqualified assignee", func() {
			It("should return per-person verdicts and a strict team verdict", func() {
				// When
				result, err := service.Check(ctx, validRequest())

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(result.WorkTypeCode).To(Equal("WT-HOTWORK"))
				Expect(result.Eligible).To(BeFalse())
				Expect(result.AssigneeResults).To(HaveLen(2))
				Expect(result.AssigneeResults[0].Eligible).To(BeTrue())
				Expect(result.AssigneeResults[1].Eligible).To(BeFalse())
				Expect(result.AssigneeResults[1].MissingCerts).To(Equal([]string{"WELD-L2"}))
			})

			It("should carry the rule trace", func() {
				// When
				result, err := service.Check(ctx, validRequest())

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(result.RuleTrace.BaseRule).To(Equal("WT-HOTWORK"))
				Expect(result.RuleTrace.Enforcement).To(Equal(eligibility.ModeBlock))
				Expect(result.RuleTrace.OverridesApplied).To(BeZero())
			})

			It("should publish a check completed event", func() {
				// When
				_, err := service.Check(ctx, validRequest())

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(publisher.published).To(HaveLen(1))
				Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeCheckCompleted))
			})
		})

		Context("under a WARN override", func() {
			BeforeEach(func() {
				approvedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
				ruleStore.overrides["WT-HOTWORK/project/P-100"] = []eligibility.OverrideRecord{
					{ID: 1, Patch: []byte(`{"enforcement_mode": "WARN"}`), ApprovedAt: &approvedAt},
				}
			})

			It("should report everyone eligible while keeping the gaps visible", func() {
				// When
				result, err := service.Check(ctx, validRequest())

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(result.Eligible).To(BeTrue())
				Expect(result.AssigneeResults[1].Eligible).To(BeTrue())
				Expect(result.AssigneeResults[1].MissingCerts).To(Equal([]string{"WELD-L2"}))
				Expect(result.RuleTrace.OverridesApplied).To(Equal(1))
			})
		})

		Context("with invalid input", func() {
			It("should reject an unknown scope before touching any store", func() {
				// Given
				req := validRequest()
				req.Scope = "region"

				// When
				_, err := service.Check(ctx, req)

				// Then
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidScope))
				Expect(ruleStore.ruleCalls).To(BeZero())
				Expect(credStore.calls).To(BeZero())
			})

			It("should reject an empty assignee list before touching any store", func() {
				// Given
				req := validRequest()
				req.Assignees = nil

				// When
				_, err := service.Check(ctx, req)

				// Then
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAssignees))
				Expect(ruleStore.ruleCalls).To(BeZero())
			})

			It("should reject a non-numeric assignee identifier", func() {
				// Given
				req := validRequest()
				req.Assignees = assignees("1", "abc")

				// When
				_, err := service.Check(ctx, req)

				// Then
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAssignees))
				Expect(ruleStore.ruleCalls).To(BeZero())
			})

			It("should reject an unparseable as-of date", func() {
				// Given
				req := validRequest()
				req.AsOfDate = "soonish"

				// When
				_, err := service.Check(ctx, req)

				// Then
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
				Expect(credStore.calls).To(BeZero())
			})
		})

		Context("with an unknown work type", func() {
			It("should return a not found error", func() {
				// Given
				req := validRequest()
				req.WorkTypeCode = "WT-NOPE"

				// When
				_, err := service.Check(ctx, req)

				// Then
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeWorkTypeNotFound))
			})
		})

		Context("with a malformed override in the chain", func() {
			It("should fail the check rather than guess", func() {
				// Given
				ruleStore.overrides["WT-HOTWORK/project/P-100"] = []eligibility.OverrideRecord{
					{ID: 1, Patch: []byte(`{"bogus": true}`)},
				}

				// When
				_, err := service.Check(ctx, validRequest())

				// Then
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeMalformedPatch))
			})
		})

		Context("when the credential store fails", func() {
			It("should surface an internal error, never a verdict", func() {
				// Given
				credStore.err = context.DeadlineExceeded

				// When
				result, err := service.Check(ctx, validRequest())

				// Then
				Expect(result).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(500))
			})
		})

		Context("determinism", func() {
			It("should return identical results for repeated identical requests", func() {
				// When
				first, err1 := service.Check(ctx, validRequest())
				second, err2 := service.Check(ctx, validRequest())

				// Then
				Expect(err1).ToNot(HaveOccurred())
				Expect(err2).ToNot(HaveOccurred())
				Expect(second).To(Equal(first))
			})

			It("should preserve assignee order in the results", func() {
				// Given
				req := validRequest()
				req.Assignees = assignees("2", "1")

				// When
				result, err := service.Check(ctx, req)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(result.AssigneeResults[0].PersonID).To(Equal(int64(2)))
				Expect(result.AssigneeResults[1].PersonID).To(Equal(int64(1)))
			})
		})
	})

	Describe("ResolveRule", func() {
		It("should expose the folded rule for inspection", func() {
			// Given
			approvedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
			ruleStore.overrides["WT-HOTWORK/site/S-7"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_add": ["GAS-TEST"]}`), ApprovedAt: &approvedAt},
			}

			// When
			rule, err := service.ResolveRule(ctx, "WT-HOTWORK", "site", "S-7")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(rule.RequiredCertsAll).To(Equal([]string{"WELD-L2", "GAS-TEST"}))
			Expect(rule.OverridesApplied).To(Equal(1))
		})

		It("should validate the scope", func() {
			// When
			_, err := service.ResolveRule(ctx, "WT-HOTWORK", "country", "ID")

			// Then
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidScope))
		})
	})
})
