package postgres

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

func TestUserRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserRepository Suite")
}

var _ = Describe("UserRepository", func() {
	var (
		db   *gorm.DB
		repo *Repository
		role datamodel.Role
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		err = db.AutoMigrate(&datamodel.User{}, &datamodel.Role{}, &datamodel.Permission{}, &datamodel.Book{}, &datamodel.Loan{})
		Expect(err).NotTo(HaveOccurred())

		role = datamodel.Role{Name: "reader"}
		Expect(db.Create(&role).Error).To(Succeed())

		repo = NewRepository(db, bcrypt.MinCost)
	})

	newUser := func(email string) *datamodel.User {
		return &datamodel.User{
			Firstname: "Test",
			Lastname:  "User",
			Email:     email,
			Password:  "plaintext-secret",
		}
	}

	Describe("Create", func() {
		It("hashes the password before the row is written", func() {
			created, err := repo.Create(newUser("a@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())

			var stored datamodel.User
			Expect(db.First(&stored, created.ID).Error).To(Succeed())
			Expect(stored.Password).NotTo(Equal("plaintext-secret"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("plaintext-secret"))).To(Succeed())
		})

		It("attaches the given roles and preloads them", func() {
			created, err := repo.Create(newUser("a@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Roles).To(HaveLen(1))
			Expect(created.Roles[0].Name).To(Equal("reader"))
		})

		It("fails on a duplicate email", func() {
			_, err := repo.Create(newUser("dup@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Create(newUser("dup@example.com"), []int64{role.ID})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByID", func() {
		It("returns the domain not-found error for missing rows", func() {
			_, err := repo.GetByID(999)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("GetByEmailWithRoles", func() {
		It("resolves the account with its roles", func() {
			created, err := repo.Create(newUser("a@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())

			found, err := repo.GetByEmailWithRoles("a@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(created.ID))
			Expect(found.Roles).To(HaveLen(1))
		})
	})

	Describe("AddRoles", func() {
		It("skips associations that already exist", func() {
			created, err := repo.Create(newUser("a@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())

			other := datamodel.Role{Name: "author"}
			Expect(db.Create(&other).Error).To(Succeed())

			updated, err := repo.AddRoles(created.ID, []int64{role.ID, other.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Roles).To(HaveLen(2))

			var count int64
			Expect(db.Table("user_roles").Where("user_id = ?", created.ID).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("Update", func() {
		It("applies only the given fields", func() {
			created, err := repo.Create(newUser("a@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())

			updated, err := repo.Update(created.ID, map[string]interface{}{"firstname": "Renamed"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Firstname).To(Equal("Renamed"))
			Expect(updated.Email).To(Equal("a@example.com"))
		})
	})

	Describe("Delete", func() {
		It("removes the user with its role links, books and loans", func() {
			created, err := repo.Create(newUser("a@example.com"), []int64{role.ID})
			Expect(err).NotTo(HaveOccurred())

			book := datamodel.Book{Title: "Mine", ISBN: "123", Quantity: 1, Resume: "r", AuthorID: created.ID}
			Expect(db.Create(&book).Error).To(Succeed())
			loan := datamodel.Loan{UserID: created.ID, BookID: book.ID}
			Expect(db.Create(&loan).Error).To(Succeed())

			Expect(repo.Delete(created.ID)).To(Succeed())

			var users, books, loans, links int64
			Expect(db.Model(&datamodel.User{}).Count(&users).Error).To(Succeed())
			Expect(db.Model(&datamodel.Book{}).Count(&books).Error).To(Succeed())
			Expect(db.Model(&datamodel.Loan{}).Count(&loans).Error).To(Succeed())
			Expect(db.Table("user_roles").Count(&links).Error).To(Succeed())
			Expect(users).To(BeZero())
			Expect(books).To(BeZero())
			Expect(loans).To(BeZero())
			Expect(links).To(BeZero())
		})
	})
})
