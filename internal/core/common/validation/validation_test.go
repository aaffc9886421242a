package validation_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/common/validation"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("Builder", func() {
	var db *gorm.DB

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		err = db.AutoMigrate(&datamodel.User{}, &datamodel.Role{}, &datamodel.Permission{}, &datamodel.Book{}, &datamodel.Loan{})
		Expect(err).NotTo(HaveOccurred())
	})

	violationFor := func(err *internal.AppError, property string) map[string]string {
		for _, v := range err.Violations {
			if v.Property == property {
				return v.Infos
			}
		}
		return nil
	}

	Describe("pure rules", func() {
		It("collects every violation across fields", func() {
			v := validation.New(db)
			v.Field("email", "").
				Required("email is required").
				Email("must be a valid email")
			v.Field("firstname", "").
				Required("firstname is required")

			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(err.Violations).To(HaveLen(2))
			Expect(violationFor(err, "email")).To(HaveKey("isNotEmpty"))
			Expect(violationFor(err, "firstname")).To(HaveKey("isNotEmpty"))
		})

		It("collects multiple failed rules on one field under their rule names", func() {
			v := validation.New(db)
			v.Field("name", "x").
				Length(2, 50, "name must be between 2 and 50 characters").
				Custom(func(value interface{}) *validation.Violation {
					return &validation.Violation{Rule: "custom", Message: "always fails"}
				})

			err := v.Error()
			Expect(err).NotTo(BeNil())
			infos := violationFor(err, "name")
			Expect(infos).To(HaveKey("isLength"))
			Expect(infos).To(HaveKey("custom"))
		})

		It("returns nil when everything passes", func() {
			v := validation.New(db)
			v.Field("email", "ok@example.com").
				Required("required").
				Email("must be valid")

			Expect(v.Error()).To(BeNil())
		})

		It("rejects malformed email addresses", func() {
			v := validation.New(db)
			v.Field("email", "not-an-email").Email("must be valid")

			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "email")).To(HaveKey("isEmail"))
		})

		It("checks array size, uniqueness and exclusions", func() {
			v := validation.New(db)
			v.Field("roles", []int64{2, 2, 1}).
				ArrayMinSize(1, "min").
				ArrayMaxSize(2, "max").
				ArrayUnique("unique").
				ArrayExcludes(1, "no admin")

			err := v.Error()
			Expect(err).NotTo(BeNil())
			infos := violationFor(err, "roles")
			Expect(infos).To(HaveKey("arrayMaxSize"))
			Expect(infos).To(HaveKey("arrayUnique"))
			Expect(infos).To(HaveKey("isNotIn"))
			Expect(infos).NotTo(HaveKey("arrayMinSize"))
		})

		It("rejects dates in the past but tolerates small skew", func() {
			v := validation.New(db)
			v.Field("loanAt", time.Now().Add(-time.Hour)).NotPast("no past dates")
			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "loanAt")).To(HaveKey("minDate"))

			v = validation.New(db)
			v.Field("loanAt", time.Now().Add(-10*time.Second)).NotPast("no past dates")
			Expect(v.Error()).To(BeNil())
		})

		It("requires the return date to come after the loan date", func() {
			loanAt := time.Now().Add(time.Hour)

			v := validation.New(db)
			v.Field("supposedReturnAt", loanAt).After(loanAt, "must be after")
			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "supposedReturnAt")).To(HaveKey("isValidReturnDate"))

			v = validation.New(db)
			v.Field("supposedReturnAt", loanAt.Add(time.Minute)).After(loanAt, "must be after")
			Expect(v.Error()).To(BeNil())
		})
	})

	Describe("persistence-backed rules", func() {
		It("flags values already present in the table", func() {
			user := datamodel.User{Firstname: "A", Lastname: "B", Email: "taken@example.com", Password: "hash"}
			Expect(db.Create(&user).Error).To(Succeed())

			v := validation.New(db)
			v.Field("email", "taken@example.com").
				Unique(&datamodel.User{}, "email", "already in use")

			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "email")).To(HaveKey("isUnique"))
		})

		It("skips the unique check for empty strings", func() {
			v := validation.New(db)
			v.Field("email", "").Unique(&datamodel.User{}, "email", "already in use")
			Expect(v.Error()).To(BeNil())
		})

		It("fails Available when any id does not exist", func() {
			role := datamodel.Role{Name: "librarian"}
			Expect(db.Create(&role).Error).To(Succeed())

			v := validation.New(db)
			v.Field("roles", []int64{role.ID, 999}).
				Available(&datamodel.Role{}, "unknown role")

			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "roles")).To(HaveKey("isAvailable"))

			v = validation.New(db)
			v.Field("roles", []int64{role.ID}).
				Available(&datamodel.Role{}, "unknown role")
			Expect(v.Error()).To(BeNil())
		})

		It("only accepts validated books in ValidatedBooks", func() {
			author := datamodel.User{Firstname: "A", Lastname: "B", Email: "a@example.com", Password: "hash"}
			Expect(db.Create(&author).Error).To(Succeed())
			pending := datamodel.Book{Title: "Pending", ISBN: "111", Quantity: 1, Resume: "r", AuthorID: author.ID}
			valid := datamodel.Book{Title: "Valid", ISBN: "222", Quantity: 1, Resume: "r", IsValid: true, AuthorID: author.ID}
			Expect(db.Create(&pending).Error).To(Succeed())
			Expect(db.Create(&valid).Error).To(Succeed())

			v := validation.New(db)
			v.Field("books", []int64{pending.ID}).ValidatedBooks("unknown book")
			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "books")).To(HaveKey("isBookIdExists"))

			v = validation.New(db)
			v.Field("books", []int64{valid.ID}).ValidatedBooks("unknown book")
			Expect(v.Error()).To(BeNil())
		})

		It("rejects books with no copies left in LoanableBooks", func() {
			author := datamodel.User{Firstname: "A", Lastname: "B", Email: "a@example.com", Password: "hash"}
			Expect(db.Create(&author).Error).To(Succeed())
			b := datamodel.Book{Title: "Scarce", ISBN: "333", Quantity: 1, Resume: "r", IsValid: true, AuthorID: author.ID}
			Expect(db.Create(&b).Error).To(Succeed())

			v := validation.New(db)
			v.Field("books", []int64{b.ID}).LoanableBooks("no copies left")
			Expect(v.Error()).To(BeNil())

			loan := datamodel.Loan{
				UserID:           author.ID,
				BookID:           b.ID,
				LoanAt:           time.Now(),
				SupposedReturnAt: time.Now().Add(24 * time.Hour),
			}
			Expect(db.Create(&loan).Error).To(Succeed())

			v = validation.New(db)
			v.Field("books", []int64{b.ID}).LoanableBooks("no copies left")
			err := v.Error()
			Expect(err).NotTo(BeNil())
			Expect(violationFor(err, "books")).To(HaveKey("isBookAvailableToLoan"))
		})

		It("counts copies again once loans are returned", func() {
			author := datamodel.User{Firstname: "A", Lastname: "B", Email: "a@example.com", Password: "hash"}
			Expect(db.Create(&author).Error).To(Succeed())
			b := datamodel.Book{Title: "Cycled", ISBN: "444", Quantity: 1, Resume: "r", IsValid: true, AuthorID: author.ID}
			Expect(db.Create(&b).Error).To(Succeed())

			returnedAt := time.Now()
			loan := datamodel.Loan{
				UserID:           author.ID,
				BookID:           b.ID,
				LoanAt:           time.Now().Add(-48 * time.Hour),
				SupposedReturnAt: time.Now().Add(-24 * time.Hour),
				ReturnAt:         &returnedAt,
			}
			Expect(db.Create(&loan).Error).To(Succeed())

			v := validation.New(db)
			v.Field("books", []int64{b.ID}).LoanableBooks("no copies left")
			Expect(v.Error()).To(BeNil())
		})
	})
})
