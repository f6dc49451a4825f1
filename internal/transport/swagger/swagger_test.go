package swagger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Spec", func() {
	ginkgo.It("should load the bundled api document", func() {
		spec, err := Load(filepath.Join("..", "..", "..", "api", "openapi.yml"))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(spec.Doc.Paths.Find("/analytics/overview")).ToNot(gomega.BeNil())
		gomega.Expect(spec.Doc.Paths.Find("/dashboard/admin")).ToNot(gomega.BeNil())
	})

	ginkgo.It("should serve the raw document", func() {
		spec, err := Load(filepath.Join("..", "..", "..", "api", "openapi.yml"))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		rec := httptest.NewRecorder()

		spec.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.HavePrefix("openapi: 3.0.3"))
	})

	ginkgo.It("should reject a document that is not OpenAPI", func() {
		path := filepath.Join(ginkgo.GinkgoT().TempDir(), "broken.yml")
		gomega.Expect(os.WriteFile(path, []byte("openapi: 3.0.3\npaths: {}\n"), 0o600)).To(gomega.Succeed())

		_, err := Load(path)

		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should fail on a missing file", func() {
		_, err := Load("does-not-exist.yml")

		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("read openapi spec")))
	})
})
