package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/vision"
)

func TestOpenAI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAI Client Suite")
}

var _ = Describe("Client.Generate", func() {
	var (
		requests int32
		status   int
		payload  any
		server   *httptest.Server
		client   *Client
		req      vision.Request
	)

	BeforeEach(func() {
		requests = 0
		status = http.StatusOK
		payload = map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"vendor":"Staples","confidence":90}`}},
			},
		}
		req = vision.Request{Prompt: "extract", ImageB64: "aGVsbG8=", MediaType: "image/png"}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(payload)
		}))

		client = NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil)
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the reply text unmodified", func() {
		text, err := client.Generate(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(`{"vendor":"Staples","confidence":90}`))
		Expect(requests).To(Equal(int32(1)))
	})

	When("no credential is configured", func() {
		It("fails with a config error before any network activity", func() {
			bare := NewClient(Config{APIKey: "unset", BaseURL: server.URL}, nil)
			bare.cfg.APIKey = ""

			_, err := bare.Generate(context.Background(), req)
			Expect(errors.Is(err, common.ErrConfig)).To(BeTrue())
			Expect(requests).To(BeZero())
		})
	})

	When("the provider reports a failure status", func() {
		BeforeEach(func() {
			status = http.StatusTooManyRequests
			payload = map[string]any{"error": map[string]any{"message": "rate limit exceeded"}}
		})

		It("surfaces a transport error carrying the provider's message", func() {
			_, err := client.Generate(context.Background(), req)
			Expect(errors.Is(err, common.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("rate limit exceeded"))
		})
	})

	When("the envelope has no choices", func() {
		BeforeEach(func() {
			payload = map[string]any{"choices": []any{}}
		})

		It("fails with an empty-reply error", func() {
			_, err := client.Generate(context.Background(), req)
			Expect(errors.Is(err, common.ErrEmptyReply)).To(BeTrue())
		})
	})

	When("the content is blank", func() {
		BeforeEach(func() {
			payload = map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "   "}},
				},
			}
		})

		It("fails with an empty-reply error", func() {
			_, err := client.Generate(context.Background(), req)
			Expect(errors.Is(err, common.ErrEmptyReply)).To(BeTrue())
		})
	})
})
