package eligibility_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siteops/workforce-compliance/internal/eligibility"
)

type mockRuleStore struct {
	rules         map[string]*eligibility.BaseRule
	overrides     map[string][]eligibility.OverrideRecord
	ruleErr       error
	overrideErr   error
	ruleCalls     int
	overrideCalls int
}

func newMockRuleStore() *mockRuleStore {
	return &mockRuleStore{
		rules:     make(map[string]*eligibility.BaseRule),
		overrides: make(map[string][]eligibility.OverrideRecord),
	}
}

func (m *mockRuleStore) WorkTypeRuleByCode(_ context.Context, code string) (*eligibility.BaseRule, error) {
	m.ruleCalls++
	if m.ruleErr != nil {
		return nil, m.ruleErr
	}
	return m.rules[code], nil
}

func (m *mockRuleStore) ActiveOverrides(_ context.Context, workTypeCode, scope, scopeRef string) ([]eligibility.OverrideRecord, error) {
	m.overrideCalls++
	if m.overrideErr != nil {
		return nil, m.overrideErr
	}
	return m.overrides[workTypeCode+"/"+scope+"/"+scopeRef], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Resolver", func() {
	var (
		store    *mockRuleStore
		resolver *eligibility.Resolver
		ctx      context.Context
	)

	approvedAt := func(day int) *time.Time {
		t := time.Date(2024, 5, day, 10, 0, 0, 0, time.UTC)
		return &t
	}

	BeforeEach(func() {
		store = newMockRuleStore()
		resolver = eligibility.NewResolver(store, testLogger())
		ctx = context.Background()

		store.rules["WT-1"] = &eligibility.BaseRule{
			WorkTypeCode: "WT-1",
			Name:         "Scaffold erection",
			Enforcement:  eligibility.ModeBlock,
			Active:       true,
		}
	})

	Context("with no overrides", func() {
		It("should return the base rule unchanged", func() {
			// Given
			store.rules["WT-1"].RequiredCertsAll = []string{"SCAF-L1"}

			// When
			rule, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(rule.RequiredCertsAll).To(Equal([]string{"SCAF-L1"}))
			Expect(rule.Enforcement).To(Equal(eligibility.ModeBlock))
			Expect(rule.OverridesApplied).To(BeZero())
		})
	})

	Context("override fold order", func() {
		It("should fold in approval order: add then remove yields an empty list", func() {
			// Given: O1 adds A, O2 removes A, approved in that order
			store.overrides["WT-1/project/P-100"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_add": ["A"]}`), ApprovedAt: approvedAt(1)},
				{ID: 2, Patch: []byte(`{"required_certs_all_remove": ["A"]}`), ApprovedAt: approvedAt(2)},
			}

			// When
			rule, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(rule.RequiredCertsAll).To(BeEmpty())
			Expect(rule.OverridesApplied).To(Equal(2))
		})

		It("should yield the opposite result when approval order is swapped", func() {
			// Given: same patches, remove approved before add
			store.overrides["WT-1/project/P-100"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_add": ["A"]}`), ApprovedAt: approvedAt(2)},
				{ID: 2, Patch: []byte(`{"required_certs_all_remove": ["A"]}`), ApprovedAt: approvedAt(1)},
			}

			// When
			rule, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(rule.RequiredCertsAll).To(Equal([]string{"A"}))
		})

		It("should apply add and remove against the running list, not the base", func() {
			// Given
			store.rules["WT-1"].RequiredCertsAll = []string{"SCAF-L1"}
			store.overrides["WT-1/site/S-7"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_replace": ["SCAF-L2"]}`), ApprovedAt: approvedAt(1)},
				{ID: 2, Patch: []byte(`{"required_certs_all_add": ["RESCUE"]}`), ApprovedAt: approvedAt(2)},
				{ID: 3, Patch: []byte(`{"required_certs_all_remove": ["SCAF-L2"]}`), ApprovedAt: approvedAt(3)},
			}

			// When
			rule, err := resolver.Resolve(ctx, "WT-1", "site", "S-7")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(rule.RequiredCertsAll).To(Equal([]string{"RESCUE"}))
		})

		It("should order unapproved overrides after approved ones", func() {
			// Given: the unapproved replace lands last and wins
			store.overrides["WT-1/project/P-100"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_replace": ["LATE"]}`),
					CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
				{ID: 2, Patch: []byte(`{"required_certs_all_replace": ["EARLY"]}`), ApprovedAt: approvedAt(20)},
			}

			// When
			rule, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(rule.RequiredCertsAll).To(Equal([]string{"LATE"}))
		})
	})

	Context("when the work type does not exist", func() {
		It("should fail without consulting overrides", func() {
			// When
			_, err := resolver.Resolve(ctx, "WT-NOPE", "project", "P-100")

			// Then
			Expect(err).To(MatchError(eligibility.ErrWorkTypeNotFound))
			Expect(store.overrideCalls).To(BeZero())
		})
	})

	Context("when the work type is inactive", func() {
		It("should fail the same way as a missing one", func() {
			// Given
			store.rules["WT-1"].Active = false

			// When
			_, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).To(MatchError(eligibility.ErrWorkTypeNotFound))
		})
	})

	Context("when a patch in the chain is malformed", func() {
		It("should fail the whole resolution, not skip the patch", func() {
			// Given: first patch valid, second malformed
			store.overrides["WT-1/project/P-100"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_add": ["A"]}`), ApprovedAt: approvedAt(1)},
				{ID: 2, Patch: []byte(`{"no_such_field": true}`), ApprovedAt: approvedAt(2)},
			}

			// When
			rule, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).To(MatchError(eligibility.ErrMalformedPatch))
			Expect(rule).To(BeNil())
		})
	})

	Context("when the store fails", func() {
		It("should surface the error", func() {
			// Given
			store.overrideErr = errors.New("connection refused")

			// When
			_, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).To(MatchError(ContainSubstring("connection refused")))
		})
	})

	Context("when the base rule has lists", func() {
		It("should not mutate the base rule while folding", func() {
			// Given
			store.rules["WT-1"].RequiredCertsAll = []string{"SCAF-L1"}
			store.overrides["WT-1/project/P-100"] = []eligibility.OverrideRecord{
				{ID: 1, Patch: []byte(`{"required_certs_all_add": ["EXTRA"]}`), ApprovedAt: approvedAt(1)},
			}

			// When
			_, err := resolver.Resolve(ctx, "WT-1", "project", "P-100")

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(store.rules["WT-1"].RequiredCertsAll).To(Equal([]string{"SCAF-L1"}))
		})
	})
})
