package extraction

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/imaging"
	"github.com/notarykit/docuscan/internal/parse"
	"github.com/notarykit/docuscan/internal/schema"
	"github.com/notarykit/docuscan/internal/vision"
)

func TestExtraction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extraction Suite")
}

// stubClient counts calls and replays a canned reply or error.
type stubClient struct {
	calls int32
	reply string
	err   error

	lastRequest vision.Request
}

func (s *stubClient) Generate(_ context.Context, req vision.Request) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.lastRequest = req
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

var _ = Describe("Pipeline.Extract", func() {
	var (
		client *stubClient
		p      *Pipeline
		img    imaging.Image
	)

	BeforeEach(func() {
		client = &stubClient{}
		p = NewPipeline(client, Config{}, nil)
		img = imaging.Image{Reader: strings.NewReader("image bytes"), MediaType: "image/jpeg"}
	})

	When("the model replies with a well-formed object", func() {
		BeforeEach(func() {
			client.reply = `{"vendor":"Staples","amount":34.99,"date":"2025-03-02",` +
				`"description":"Toner","category":"PrintingAndPaper",` +
				`"payment_method":"VISA","confidence":95}`
		})

		It("returns a complete, verified result", func() {
			res, err := p.Extract(context.Background(), constants.KindReceipt, img)
			Expect(err).NotTo(HaveOccurred())

			sch, _ := schema.Get(constants.KindReceipt)
			for _, name := range sch.FieldNames() {
				Expect(res.Fields).To(HaveKey(name))
			}
			Expect(res.Confidence).To(Equal(95))
			Expect(res.Verified).To(BeTrue())
			Expect(res.Tier).To(Equal(parse.TierStrict))
			Expect(res.RawText).To(Equal(client.reply))
		})

		It("sends the schema prompt and the normalized image", func() {
			_, err := p.Extract(context.Background(), constants.KindReceipt, img)
			Expect(err).NotTo(HaveOccurred())

			sch, _ := schema.Get(constants.KindReceipt)
			Expect(client.lastRequest.Prompt).To(Equal(sch.Prompt()))
			Expect(client.lastRequest.MediaType).To(Equal("image/jpeg"))
			Expect(client.lastRequest.ImageB64).NotTo(BeEmpty())
		})
	})

	When("the model replies with unusable prose", func() {
		BeforeEach(func() {
			client.reply = "Sorry, I cannot make out this image."
		})

		It("degrades to defaults instead of failing", func() {
			res, err := p.Extract(context.Background(), constants.KindReceipt, img)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Confidence).To(BeZero())
			Expect(res.Verified).To(BeFalse())
			Expect(res.Fields["vendor"]).To(Equal(schema.Unknown))
		})
	})

	When("the provider reports a transport failure", func() {
		BeforeEach(func() {
			client.err = common.TransportError("rate limited", nil)
		})

		It("surfaces the error unchanged", func() {
			_, err := p.Extract(context.Background(), constants.KindReceipt, img)
			Expect(errors.Is(err, common.ErrTransport)).To(BeTrue())
		})
	})

	When("the image input is unreadable", func() {
		It("fails before ever calling the provider", func() {
			_, err := p.Extract(context.Background(), constants.KindReceipt, imaging.Image{})
			Expect(errors.Is(err, common.ErrInput)).To(BeTrue())
			Expect(client.calls).To(BeZero())
		})
	})

	When("the document kind is unknown", func() {
		It("fails before ever calling the provider", func() {
			_, err := p.Extract(context.Background(), constants.DocKind("NAPKIN"), img)
			Expect(errors.Is(err, common.ErrInput)).To(BeTrue())
			Expect(client.calls).To(BeZero())
		})
	})

	It("confidence stays within bounds whatever the model emits", func() {
		client.reply = `{"vendor":"Staples","amount":1,"date":"2025-03-02","confidence":100000}`
		res, err := p.Extract(context.Background(), constants.KindReceipt, img)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Confidence).To(Equal(100))

		client.reply = `{"vendor":"Staples","confidence":-40}`
		img = imaging.Image{Data: "aGVsbG8="}
		res, err = p.Extract(context.Background(), constants.KindReceipt, img)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Confidence).To(BeZero())
	})
})
