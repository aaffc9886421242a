package book

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/common/validation"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Service handles the catalog and the loan ledger.
type Service struct {
	repo            Repository
	loans           LoanRepository
	mailer          Mailer
	db              *gorm.DB
	maxBooksPerLoan int
	logger          *slog.Logger
}

func NewService(repo Repository, loans LoanRepository, mailer Mailer, db *gorm.DB, maxBooksPerLoan int, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		loans:           loans,
		mailer:          mailer,
		db:              db,
		maxBooksPerLoan: maxBooksPerLoan,
		logger:          logger,
	}
}

// List returns the catalog. A pending or validated status narrows the
// listing, any other value applies no filter.
func (s *Service) List(status string, limit, offset int) ([]datamodel.Book, error) {
	books, err := s.repo.List(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		return nil, internal.NewInternalError("could not list books", err)
	}
	return books, nil
}

// GetByID only resolves validated books. Pending books stay invisible
// outside the review endpoints.
func (s *Service) GetByID(id int64) (*datamodel.Book, error) {
	return s.repo.GetValidatedByID(id)
}

// Create submits a book for review under the caller's authorship. It
// stays pending until validated.
func (s *Service) Create(authorID int64, dto CreateDTO) (*datamodel.Book, error) {
	v := validation.New(s.db)
	v.Field("title", dto.Title).
		Required("title is required").
		Unique(&datamodel.Book{}, "title", "a book with this title already exists")
	v.Field("isbn", dto.ISBN).
		Required("isbn is required").
		Unique(&datamodel.Book{}, "isbn", "a book with this isbn already exists")
	v.Field("resume", dto.Resume).
		Required("resume is required")
	v.Field("quantity", dto.Quantity).
		IntMin(0, "quantity cannot be negative")
	if err := v.Error(); err != nil {
		return nil, err
	}

	quantity := dto.Quantity
	if quantity == 0 {
		quantity = 1
	}

	created, err := s.repo.Create(&datamodel.Book{
		Title:    dto.Title,
		ISBN:     dto.ISBN,
		Quantity: quantity,
		Resume:   dto.Resume,
		AuthorID: authorID,
	})
	if err != nil {
		s.logger.Error("failed to create book", "error", err, "title", dto.Title)
		return nil, internal.NewInternalError("could not create book", err)
	}

	return created, nil
}

// Update applies partial-field semantics: only submitted fields
// overwrite existing values.
func (s *Service) Update(id int64, dto UpdateDTO) (*datamodel.Book, error) {
	if dto.Empty() {
		return nil, internal.ErrEmptyUpdatePayload
	}

	v := validation.New(s.db)
	if dto.Title != "" {
		v.Field("title", dto.Title).
			Unique(&datamodel.Book{}, "title", "a book with this title already exists")
	}
	if dto.ISBN != "" {
		v.Field("isbn", dto.ISBN).
			Unique(&datamodel.Book{}, "isbn", "a book with this isbn already exists")
	}
	if dto.Quantity != nil {
		v.Field("quantity", *dto.Quantity).
			IntMin(0, "quantity cannot be negative")
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if dto.Title != "" {
		fields["title"] = dto.Title
	}
	if dto.ISBN != "" {
		fields["isbn"] = dto.ISBN
	}
	if dto.Quantity != nil {
		fields["quantity"] = *dto.Quantity
	}
	if dto.Resume != "" {
		fields["resume"] = dto.Resume
	}

	updated, err := s.repo.Update(id, fields)
	if err != nil {
		s.logger.Error("failed to update book", "error", err, "book_id", id)
		return nil, internal.NewInternalError("could not update book", err)
	}

	return updated, nil
}

// Validate moves a pending book into the catalog and stamps its
// publication date. A book can only be validated once.
func (s *Service) Validate(id int64) (*datamodel.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if book.IsValid {
		return nil, internal.ErrBookAlreadyValidated
	}

	validated, err := s.repo.MarkValidated(id, time.Now())
	if err != nil {
		s.logger.Error("failed to validate book", "error", err, "book_id", id)
		return nil, internal.NewInternalError("could not validate book", err)
	}

	s.logger.Info("book validated", "book_id", id, "title", validated.Title)

	return validated, nil
}

// Reject notifies the author that the submission was turned down. The
// book itself is left untouched so it can be revised and resubmitted.
func (s *Service) Reject(id int64, dto RejectDTO) (*datamodel.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	message := dto.Message
	if message == "" {
		message = "your submission did not meet the catalog requirements"
	}

	body := fmt.Sprintf("Your book '%s' was rejected.\nReason: %s", book.Title, message)
	go s.sendMail(book.Author.Email, "Book submission rejected", body)

	return book, nil
}

// Loan records one loan per requested book for the caller and mails a
// summary. The caller must have no outstanding loans, which the route
// precondition already checked.
func (s *Service) Loan(principal *internal.Principal, dto LoanDTO) ([]datamodel.Loan, error) {
	v := validation.New(s.db)
	v.Field("books", dto.Books).
		ArrayMinSize(1, "at least one book must be given").
		ArrayMaxSize(s.maxBooksPerLoan, fmt.Sprintf("you cannot loan more than %d books at once", s.maxBooksPerLoan)).
		ArrayUnique("books must be distinct").
		ValidatedBooks("one or more of the given books do not exist").
		LoanableBooks("one or more of the given books have no copies left")
	v.Field("loanAt", dto.LoanAt).
		Required("loan date is required").
		NotPast("loan date cannot be in the past")
	v.Field("supposedReturnAt", dto.SupposedReturnAt).
		Required("return date is required").
		After(dto.LoanAt, "return date must be after the loan date")
	if err := v.Error(); err != nil {
		return nil, err
	}

	loans := make([]datamodel.Loan, 0, len(dto.Books))
	for _, bookID := range dto.Books {
		loans = append(loans, datamodel.Loan{
			UserID:           principal.ID,
			BookID:           bookID,
			LoanAt:           dto.LoanAt,
			SupposedReturnAt: dto.SupposedReturnAt,
		})
	}

	if err := s.loans.CreateLoans(loans); err != nil {
		s.logger.Error("failed to create loans", "error", err, "user_id", principal.ID)
		return nil, internal.NewInternalError("could not record loan", err)
	}

	s.logger.Info("loan recorded", "user_id", principal.ID, "books", len(loans))

	go s.sendLoanConfirmation(principal, dto)

	return loans, nil
}

// Return closes every outstanding loan of the caller at once and mails
// a confirmation. The route precondition guarantees there is at least
// one.
func (s *Service) Return(principal *internal.Principal) (int64, error) {
	returned, err := s.loans.ReturnAll(principal.ID, time.Now())
	if err != nil {
		s.logger.Error("failed to return loans", "error", err, "user_id", principal.ID)
		return 0, internal.NewInternalError("could not return books", err)
	}

	s.logger.Info("loans returned", "user_id", principal.ID, "count", returned)

	go s.sendMail(principal.Email, "Books returned",
		fmt.Sprintf("You returned %d book(s). Thank you.", returned))

	return returned, nil
}

// Delete removes the book and its loan history in one transaction.
func (s *Service) Delete(id int64) (*datamodel.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete book", "error", err, "book_id", id)
		return nil, internal.NewInternalError("could not delete book", err)
	}

	s.logger.Info("book deleted", "book_id", id, "title", book.Title)

	return book, nil
}

func (s *Service) sendLoanConfirmation(principal *internal.Principal, dto LoanDTO) {
	ids := make([]string, 0, len(dto.Books))
	for _, id := range dto.Books {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	body := fmt.Sprintf(
		"You loaned book(s) %s on %s. Please return them by %s.",
		strings.Join(ids, ", "),
		dto.LoanAt.Format("2006-01-02"),
		dto.SupposedReturnAt.Format("2006-01-02"),
	)
	s.sendMail(principal.Email, "Loan confirmation", body)
}

func (s *Service) sendMail(to, subject, body string) {
	if err := s.mailer.Send(to, subject, body); err != nil {
		s.logger.Error("failed to send email", "error", err, "to", to)
	}
}
