package auth

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	users         map[string]*datamodel.User
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		users: map[string]*datamodel.User{
			"reader@example.com": {
				ID:        1,
				Firstname: "Rita",
				Lastname:  "Reader",
				Email:     "reader@example.com",
				Password:  string(hash),
				Roles:     []datamodel.Role{{ID: datamodel.RoleReader, Name: "reader"}},
			},
			"admin@example.com": {
				ID:        2,
				Firstname: "Ada",
				Lastname:  "Admin",
				Email:     "admin@example.com",
				Password:  string(hash),
				Roles: []datamodel.Role{
					{ID: datamodel.RoleAdmin, Name: "admin"},
					{ID: datamodel.RoleReader, Name: "reader"},
				},
			},
		},
	}
}

func (m *mockUserRepository) GetByEmailWithRoles(email string) (*datamodel.User, error) {
	if m.errorToReturn != nil {
		return nil, m.errorToReturn
	}
	if user, ok := m.users[email]; ok {
		return user, nil
	}
	return nil, internal.ErrUserNotFound
}

type mockUserCreator struct {
	created     *datamodel.User
	roleIDs     []int64
	createError error
}

func (m *mockUserCreator) Create(user *datamodel.User, roleIDs []int64) (*datamodel.User, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	user.ID = 42
	m.created = user
	m.roleIDs = roleIDs
	return user, nil
}

type mockMailer struct {
	sent chan string
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(chan string, 8)}
}

func (m *mockMailer) Send(to, subject, body string) error {
	m.sent <- to
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service *Service
		repo    *mockUserRepository
		creator *mockUserCreator
		mailer  *mockMailer
		tokens  *MemoryTokenStore
		db      *gorm.DB
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		err = db.AutoMigrate(&datamodel.User{}, &datamodel.Role{}, &datamodel.Permission{}, &datamodel.Book{}, &datamodel.Loan{})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		repo = newMockUserRepository()
		creator = &mockUserCreator{}
		mailer = newMockMailer()
		tokens = NewMemoryTokenStore()

		cfg := internal.SecurityConfig{
			TokenSecret:   "test-secret",
			TokenDuration: time.Hour,
			BCryptCost:    bcrypt.MinCost,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		service = NewService(repo, creator, tokens, mailer, db, cfg, logger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a verifiable token carrying identity and roles", func() {
				token, err := service.Authenticate(LoginDTO{
					Email:    "admin@example.com",
					Password: "correct_password",
				})

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(token).NotTo(gomega.BeEmpty())

				claims, err := service.Verify(token)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.Email).To(gomega.Equal("admin@example.com"))
				gomega.Expect(claims.RoleIDs).To(gomega.ConsistOf(datamodel.RoleAdmin, datamodel.RoleReader))
			})
		})

		ginkgo.Context("when the password is wrong", func() {
			ginkgo.It("should reject without revealing whether the account exists", func() {
				_, err := service.Authenticate(LoginDTO{
					Email:    "reader@example.com",
					Password: "wrong_password",
				})

				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when the account does not exist", func() {
			ginkgo.It("should return the same error as a wrong password", func() {
				_, err := service.Authenticate(LoginDTO{
					Email:    "nobody@example.com",
					Password: "correct_password",
				})

				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when fields are missing", func() {
			ginkgo.It("should reject empty credentials", func() {
				_, err := service.Authenticate(LoginDTO{})
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("Verify", func() {
		ginkgo.It("should reject garbage tokens", func() {
			_, err := service.Verify("not-a-token")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject tokens signed with another secret", func() {
			other := NewService(repo, creator, tokens, mailer, db, internal.SecurityConfig{
				TokenSecret:   "different-secret",
				TokenDuration: time.Hour,
			}, slog.New(slog.NewTextHandler(os.Stderr, nil)))

			token, err := other.Authenticate(LoginDTO{
				Email:    "reader@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Verify(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject expired tokens", func() {
			short := NewService(repo, creator, tokens, mailer, db, internal.SecurityConfig{
				TokenSecret:   "test-secret",
				TokenDuration: -time.Minute,
			}, slog.New(slog.NewTextHandler(os.Stderr, nil)))

			token, err := short.Authenticate(LoginDTO{
				Email:    "reader@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Verify(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})
	})

	ginkgo.Describe("Revoke", func() {
		ginkgo.It("should deny a token after logout for the rest of its lifetime", func() {
			token, err := service.Authenticate(LoginDTO{
				Email:    "reader@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Verify(token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Revoke(token)).To(gomega.Succeed())

			_, err = service.Verify(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenRevoked))
		})

		ginkgo.It("should not revoke other tokens of the same user", func() {
			first, err := service.Authenticate(LoginDTO{
				Email:    "reader@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			second, err := service.Authenticate(LoginDTO{
				Email:    "reader@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Revoke(first)).To(gomega.Succeed())

			_, err = service.Verify(second)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.Context("with a valid payload", func() {
			ginkgo.It("should create a reader account and mail the credentials", func() {
				created, err := service.Register(RegisterDTO{
					Firstname: "New",
					Lastname:  "Member",
					Email:     "new@example.com",
				})

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(created.Email).To(gomega.Equal("new@example.com"))
				gomega.Expect(creator.roleIDs).To(gomega.Equal([]int64{datamodel.RoleReader}))
				gomega.Expect(creator.created.Password).NotTo(gomega.BeEmpty())
				gomega.Eventually(mailer.sent).Should(gomega.Receive(gomega.Equal("new@example.com")))
			})
		})

		ginkgo.Context("with an invalid payload", func() {
			ginkgo.It("should collect every violation instead of stopping at the first", func() {
				_, err := service.Register(RegisterDTO{Email: "not-an-email"})

				var appErr *internal.AppError
				gomega.Expect(errors.As(err, &appErr)).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))

				properties := make([]string, 0, len(appErr.Violations))
				for _, v := range appErr.Violations {
					properties = append(properties, v.Property)
				}
				gomega.Expect(properties).To(gomega.ConsistOf("email", "firstname", "lastname"))
			})

			ginkgo.It("should reject an email already in use", func() {
				existing := datamodel.User{
					Firstname: "Old",
					Lastname:  "Member",
					Email:     "taken@example.com",
					Password:  "hash",
				}
				gomega.Expect(db.Create(&existing).Error).To(gomega.Succeed())

				_, err := service.Register(RegisterDTO{
					Firstname: "New",
					Lastname:  "Member",
					Email:     "taken@example.com",
				})

				var appErr *internal.AppError
				gomega.Expect(errors.As(err, &appErr)).To(gomega.BeTrue())
				gomega.Expect(appErr.Violations).To(gomega.HaveLen(1))
				gomega.Expect(appErr.Violations[0].Property).To(gomega.Equal("email"))
				gomega.Expect(appErr.Violations[0].Infos).To(gomega.HaveKey("isUnique"))
			})
		})
	})
})
