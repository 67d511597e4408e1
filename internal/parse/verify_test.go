package parse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/schema"
)

var _ = Describe("Verified", func() {
	var (
		sch    *schema.ExtractionSchema
		fields map[string]any
	)

	BeforeEach(func() {
		var err error
		sch, err = schema.Get(constants.KindReceipt)
		Expect(err).NotTo(HaveOccurred())

		fields, _ = Normalize(sch, Outcome{Fields: map[string]any{
			"vendor": "Staples",
			"amount": 34.99,
			"date":   "2025-03-02",
		}})
	})

	It("is true just above the threshold with all required fields resolved", func() {
		Expect(Verified(sch, fields, 71, 70)).To(BeTrue())
	})

	It("is false at the threshold exactly (exclusive boundary)", func() {
		Expect(Verified(sch, fields, 70, 70)).To(BeFalse())
	})

	It("is false when a required field sits at its sentinel", func() {
		fields["vendor"] = schema.Unknown
		Expect(Verified(sch, fields, 99, 70)).To(BeFalse())
	})

	It("is false when a required amount is still zero", func() {
		fields["amount"] = 0.0
		Expect(Verified(sch, fields, 99, 70)).To(BeFalse())
	})

	It("ignores optional fields at their defaults", func() {
		Expect(fields["description"]).To(Equal(schema.Unknown))
		Expect(Verified(sch, fields, 85, 70)).To(BeTrue())
	})
})
