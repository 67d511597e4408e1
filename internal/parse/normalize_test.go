package parse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/schema"
)

var _ = Describe("Normalize", func() {
	var sch *schema.ExtractionSchema

	BeforeEach(func() {
		var err error
		sch, err = schema.Get(constants.KindReceipt)
		Expect(err).NotTo(HaveOccurred())
	})

	It("fills every declared field, substituting defaults for unresolved ones", func() {
		fields, confidence := Normalize(sch, Outcome{Fields: map[string]any{}})

		for _, name := range sch.FieldNames() {
			Expect(fields).To(HaveKey(name))
			Expect(fields[name]).NotTo(BeNil())
		}
		Expect(fields["vendor"]).To(Equal(schema.Unknown))
		Expect(fields["amount"]).To(Equal(0.0))
		Expect(fields["category"]).To(Equal(string(constants.Other)))
		Expect(confidence).To(BeZero())
	})

	Describe("date fields", func() {
		normalized := func(raw string) string {
			fields, _ := Normalize(sch, Outcome{Fields: map[string]any{"date": raw}})
			return fields["date"].(string)
		}

		It("passes ISO dates through unchanged", func() {
			Expect(normalized("2025-01-15")).To(Equal("2025-01-15"))
		})

		It("reformats US-style dates", func() {
			Expect(normalized("01/15/2025")).To(Equal("2025-01-15"))
		})

		It("reformats written-out dates", func() {
			Expect(normalized("Jan 15, 2025")).To(Equal("2025-01-15"))
		})

		It("never passes an unparsable date through raw", func() {
			Expect(normalized("not-a-date")).To(Equal(schema.Unknown))
		})
	})

	Describe("amount fields", func() {
		amount := func(raw any) float64 {
			fields, _ := Normalize(sch, Outcome{Fields: map[string]any{"amount": raw}})
			return fields["amount"].(float64)
		}

		It("keeps numbers as numbers", func() {
			Expect(amount(42.5)).To(Equal(42.5))
		})

		It("coerces strings with currency noise", func() {
			Expect(amount("$1,234.56")).To(Equal(1234.56))
			Expect(amount("42.50")).To(Equal(42.5))
		})

		It("substitutes zero when coercion fails", func() {
			Expect(amount("twelve dollars")).To(Equal(0.0))
			Expect(amount(schema.Unknown)).To(Equal(0.0))
		})
	})

	Describe("category fields", func() {
		It("canonicalizes synonyms", func() {
			fields, _ := Normalize(sch, Outcome{Fields: map[string]any{"category": "gas"}})
			Expect(fields["category"]).To(Equal(string(constants.Fuel)))
		})

		It("falls back to the catch-all for unknown labels", func() {
			fields, _ := Normalize(sch, Outcome{Fields: map[string]any{"category": "llama grooming"}})
			Expect(fields["category"]).To(Equal(string(constants.Other)))
		})
	})

	Describe("confidence clamping", func() {
		clamped := func(raw float64) int {
			_, c := Normalize(sch, Outcome{Confidence: raw})
			return c
		}

		It("keeps in-range values", func() {
			Expect(clamped(95)).To(Equal(95))
		})

		It("clamps rather than rejects", func() {
			Expect(clamped(150)).To(Equal(100))
			Expect(clamped(-20)).To(BeZero())
		})
	})

	It("is a fixed point: normalizing twice changes nothing", func() {
		raw := Outcome{
			Fields: map[string]any{
				"vendor":         "  FedEx Office ",
				"amount":         "19.80",
				"date":           "03/07/2025",
				"category":       "shipping",
				"payment_method": "VISA",
			},
			Confidence: 88,
		}
		once, c1 := Normalize(sch, raw)
		twice, c2 := Normalize(sch, Outcome{Fields: once, Confidence: float64(c1)})

		Expect(twice).To(Equal(once))
		Expect(c2).To(Equal(c1))
	})
})
