package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Middleware", func() {
	var (
		logs   *bytes.Buffer
		logger *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		logs = &bytes.Buffer{}
		logger = slog.New(slog.NewJSONHandler(logs, nil))
	})

	ginkgo.Describe("filterSensitiveBody", func() {
		ginkgo.It("should mask secrets at any depth", func() {
			out := filterSensitiveBody([]byte(`{"email":"a@b.c","password":"hunter22","nested":{"refreshToken":"abc"}}`))

			gomega.Expect(out).To(gomega.ContainSubstring(`"email":"a@b.c"`))
			gomega.Expect(out).ToNot(gomega.ContainSubstring("hunter22"))
			gomega.Expect(out).ToNot(gomega.ContainSubstring(`"abc"`))
		})

		ginkgo.It("should hide non-JSON bodies that mention secrets", func() {
			gomega.Expect(filterSensitiveBody([]byte("password=hunter22"))).To(gomega.Equal("[FILTERED - Contains sensitive data]"))
		})
	})

	ginkgo.Describe("LoggingMiddleware", func() {
		ginkgo.It("should keep the request body readable by the handler", func() {
			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				got = string(b)
				w.WriteHeader(http.StatusCreated)
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"hunter22"}`))
			req.Header.Set("Content-Type", "application/json")

			LoggingMiddleware(logger)(next).ServeHTTP(httptest.NewRecorder(), req)

			gomega.Expect(got).To(gomega.Equal(`{"password":"hunter22"}`))
			gomega.Expect(logs.String()).ToNot(gomega.ContainSubstring("hunter22"))
			gomega.Expect(logs.String()).To(gomega.ContainSubstring(`"status_code":201`))
		})

		ginkgo.It("should not log spreadsheet bodies", func() {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
				_, _ = w.Write([]byte("PK\x03\x04binary"))
			})

			LoggingMiddleware(logger)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/expenses/export", nil))

			gomega.Expect(logs.String()).ToNot(gomega.ContainSubstring("binary"))
			gomega.Expect(logs.String()).To(gomega.ContainSubstring(`"response_size":10`))
		})
	})

	ginkgo.Describe("RecoveryMiddleware", func() {
		ginkgo.It("should answer 500 without leaking the panic", func() {
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("secret detail")
			})
			rec := httptest.NewRecorder()

			RecoveryMiddleware(logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("INTERNAL_ERROR"))
			gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("secret detail"))
			gomega.Expect(logs.String()).To(gomega.ContainSubstring("secret detail"))
		})
	})

	ginkgo.Describe("CORS", func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		ginkgo.It("should ignore origins outside the list", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://evil.example")
			rec := httptest.NewRecorder()

			CORS("http://localhost:3000")(ok).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.BeEmpty())
		})

		ginkgo.It("should echo any origin for a wildcard", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://anything.example")
			rec := httptest.NewRecorder()

			CORS("*")(ok).ServeHTTP(rec, req)

			gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("http://anything.example"))
		})
	})

	ginkgo.Describe("RequestID", func() {
		ginkgo.It("should keep an incoming trace id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Trace-ID", "trace-123")
			rec := httptest.NewRecorder()

			RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

			gomega.Expect(rec.Header().Get("X-Trace-ID")).To(gomega.Equal("trace-123"))
		})
	})

	ginkgo.Describe("UserContext", func() {
		ginkgo.It("should pass requests without a user through", func() {
			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

			UserContext(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(called).To(gomega.BeTrue())
		})

		ginkgo.It("should keep the user on the context", func() {
			var seen *auth.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = auth.UserFromContext(r.Context())
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: 9, Role: auth.RoleUser}))

			UserContext(next).ServeHTTP(httptest.NewRecorder(), req)

			gomega.Expect(seen.ID).To(gomega.Equal(int64(9)))
		})
	})
})
