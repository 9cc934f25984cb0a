package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("corsHandler", func() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	serve := func(origins []string, req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		corsHandler(origins)(next).ServeHTTP(rec, req)
		return rec
	}

	preflight := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		return req
	}

	It("answers a preflight from an allowed origin without reaching the handler", func() {
		rec := serve([]string{"http://localhost:3000"}, preflight("http://localhost:3000"))

		Expect(rec.Code).NotTo(Equal(http.StatusTeapot))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring(http.MethodPost))
		Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
		Expect(rec.Header().Get("Access-Control-Max-Age")).To(Equal("600"))
	})

	It("gives an unknown origin no CORS headers", func() {
		rec := serve([]string{"http://localhost:3000"}, preflight("http://evil.example"))

		Expect(rec.Code).NotTo(Equal(http.StatusTeapot))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("exposes the request id on actual requests", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve([]string{"http://localhost:3000"}, req)

		Expect(rec.Code).To(Equal(http.StatusTeapot))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(strings.ToLower(rec.Header().Get("Access-Control-Expose-Headers"))).To(ContainSubstring("x-request-id"))
		Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(BeEmpty())
	})

	It("is a pass-through without configured origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(nil, req)

		Expect(rec.Code).To(Equal(http.StatusTeapot))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})
