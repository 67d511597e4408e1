package schema

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/notarykit/docuscan/constants"
)

func TestSchema(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Schema Suite")
}

var _ = Describe("Get", func() {
	It("returns the receipt schema", func() {
		s, err := Get(constants.KindReceipt)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Kind).To(Equal(constants.KindReceipt))
		Expect(s.FieldNames()).To(ContainElements("vendor", "amount", "date", "category"))
	})

	It("returns the identity schema with a disjoint field set", func() {
		s, err := Get(constants.KindIdentity)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.FieldNames()).To(ContainElements("document_type", "document_number", "full_name"))

		r, _ := Get(constants.KindReceipt)
		for _, name := range s.FieldNames() {
			Expect(r.FieldNames()).NotTo(ContainElement(name))
		}
	})

	It("fails for an unregistered kind", func() {
		_, err := Get(constants.DocKind("PASSPORT_STAMP"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Prompt", func() {
	It("names every field plus the confidence key", func() {
		s, _ := Get(constants.KindReceipt)
		for _, name := range s.FieldNames() {
			Expect(s.Prompt()).To(ContainSubstring(name))
		}
		Expect(s.Prompt()).To(ContainSubstring(ConfidenceField))
	})

	It("instructs the model to use the Unknown sentinel", func() {
		for _, kind := range constants.AllKinds() {
			s, _ := Get(kind)
			Expect(s.Prompt()).To(ContainSubstring(`"` + Unknown + `"`))
		}
	})

	It("restricts categories to the enum", func() {
		s, _ := Get(constants.KindReceipt)
		Expect(s.Prompt()).To(ContainSubstring(strings.Join(constants.AsStringSlice(), ", ")))
	})
})

var _ = Describe("Field defaults", func() {
	It("matches the field type", func() {
		s, _ := Get(constants.KindReceipt)

		amount, ok := s.Field("amount")
		Expect(ok).To(BeTrue())
		Expect(amount.Default()).To(Equal(0.0))

		vendor, _ := s.Field("vendor")
		Expect(vendor.Default()).To(Equal(Unknown))

		category, _ := s.Field("category")
		Expect(category.Default()).To(Equal(string(constants.Other)))
	})

	It("marks the documented required subsets", func() {
		receipt, _ := Get(constants.KindReceipt)
		var names []string
		for _, f := range receipt.Required() {
			names = append(names, f.Name)
		}
		Expect(names).To(ConsistOf("vendor", "amount", "date"))

		identity, _ := Get(constants.KindIdentity)
		names = nil
		for _, f := range identity.Required() {
			names = append(names, f.Name)
		}
		Expect(names).To(ConsistOf("document_type", "document_number", "full_name"))
	})
})
