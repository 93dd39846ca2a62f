package rest_test

import (
	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI Document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		// Given the document served at /openapi.yml
		loader := openapi3.NewLoader()

		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		// Then it passes structural validation
		Expect(doc.Validate(loader.Context)).To(Succeed())
	})

	It("should document every mounted route group", func() {
		for _, path := range []string{
			"/health",
			"/ping",
			"/auth/login",
			"/auth/refresh",
			"/auth/logout",
			"/eligibility/check",
			"/eligibility/work-types/{code}/rule",
			"/work-types",
			"/work-types/{code}",
			"/work-types/{code}/overrides",
			"/overrides",
			"/overrides/{id}",
			"/overrides/{id}/approve",
			"/credential-definitions",
			"/credential-definitions/{kind}/{code}",
			"/credentials",
			"/credentials/{id}/verify",
			"/credentials/{id}/reject",
			"/people",
			"/people/{id}",
			"/people/{personID}/credentials",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should require auth on the check operation", func() {
		item := doc.Paths.Find("/eligibility/check")
		Expect(item).NotTo(BeNil())
		Expect(item.Post).NotTo(BeNil())
		Expect(item.Post.Security).NotTo(BeNil())
	})

	It("should constrain scope to the three override levels", func() {
		item := doc.Paths.Find("/eligibility/work-types/{code}/rule")
		Expect(item).NotTo(BeNil())

		var scopeParam *openapi3.Parameter
		for _, ref := range item.Get.Parameters {
			if ref.Value != nil && ref.Value.Name == "scope" {
				scopeParam = ref.Value
			}
		}
		Expect(scopeParam).NotTo(BeNil())
		Expect(scopeParam.Schema.Value.Enum).To(ConsistOf("project", "site", "permit"))
	})
})
