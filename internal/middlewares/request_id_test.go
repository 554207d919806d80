package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marketpulse/reporting-gateway/internal/middlewares"
)

var _ = Describe("RequestID", func() {

	var req *http.Request

	BeforeEach(func() {
		r, err := http.NewRequest("GET", "/api/reporting-gateway/v1/status", nil)
		if err != nil {
			panic("Test error unable to get new request")
		}
		req = r
	})

	It("Should generate a request id when none is supplied", func() {
		rr := httptest.NewRecorder()

		var seenRequestId string
		var seenRequestHeader string
		handler := middlewares.RequestID(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			seenRequestId = middlewares.GetRequestID(r.Context())
			seenRequestHeader = r.Header.Get("X-Request-Id")
		}))
		handler.ServeHTTP(rr, req)

		Expect(seenRequestId).ToNot(BeEmpty())
		Expect(rr.Header().Get("X-Request-Id")).To(Equal(seenRequestId))
		Expect(seenRequestHeader).To(Equal(seenRequestId))
	})

	It("Should keep a caller supplied request id", func() {
		rr := httptest.NewRecorder()
		req.Header.Set("X-Request-Id", "caller-supplied-id")

		var seenRequestId string
		handler := middlewares.RequestID(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			seenRequestId = middlewares.GetRequestID(r.Context())
		}))
		handler.ServeHTTP(rr, req)

		Expect(seenRequestId).To(Equal("caller-supplied-id"))
		Expect(rr.Header().Get("X-Request-Id")).To(Equal("caller-supplied-id"))
	})
})
