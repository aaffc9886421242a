package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/stonelib/library-management/internal/core/datamodel"
)

type mockPermissionRepository struct {
	permissions []datamodel.Permission
	err         error
}

func (m *mockPermissionRepository) ForRoles(roleIDs []int64) ([]datamodel.Permission, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.permissions, nil
}

var _ = ginkgo.Describe("Authorizer", func() {
	var (
		repo       *mockPermissionRepository
		authorizer *Authorizer
	)

	ginkgo.BeforeEach(func() {
		repo = &mockPermissionRepository{
			permissions: []datamodel.Permission{
				{Name: "read_books", Method: http.MethodGet, URL: `^/api/books`},
				{Name: "update_books", Method: http.MethodPut, URL: `^/api/books/\d+$`},
				{Name: "loan_books", Method: http.MethodPost, URL: `^/api/books/loan$`},
			},
		}
		authorizer = NewAuthorizer(repo, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	ginkgo.It("should grant when method and path pattern both match", func() {
		ok, err := authorizer.Authorize([]int64{1}, http.MethodGet, "/api/books")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())

		ok, err = authorizer.Authorize([]int64{1}, http.MethodPut, "/api/books/17")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should match patterns anywhere the regexp allows", func() {
		// unanchored tail: a prefix pattern covers subpaths
		ok, err := authorizer.Authorize([]int64{1}, http.MethodGet, "/api/books/17")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should deny when only the method differs", func() {
		ok, err := authorizer.Authorize([]int64{1}, http.MethodDelete, "/api/books/17")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should deny when the path does not match any pattern", func() {
		ok, err := authorizer.Authorize([]int64{1}, http.MethodPut, "/api/users/1")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should deny a principal with no roles without hitting the store", func() {
		repo.err = errors.New("must not be called")
		ok, err := authorizer.Authorize(nil, http.MethodGet, "/api/books")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should skip permissions whose stored pattern does not compile", func() {
		repo.permissions = []datamodel.Permission{
			{Name: "broken", Method: http.MethodGet, URL: `^/api/(books`},
			{Name: "read_books", Method: http.MethodGet, URL: `^/api/books`},
		}

		ok, err := authorizer.Authorize([]int64{1}, http.MethodGet, "/api/books")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})
})
