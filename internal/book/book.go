package book

import (
	"time"

	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Status filters for catalog listings.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
)

// Repository is the persistence surface for the catalog. List and
// GetByID only ever see validated books unless asked otherwise.
type Repository interface {
	List(status string, limit, offset int) ([]datamodel.Book, error)
	GetValidatedByID(id int64) (*datamodel.Book, error)
	GetByID(id int64) (*datamodel.Book, error)
	Create(book *datamodel.Book) (*datamodel.Book, error)
	Update(id int64, fields map[string]interface{}) (*datamodel.Book, error)
	MarkValidated(id int64, publishedAt time.Time) (*datamodel.Book, error)
	Delete(id int64) error
}

// LoanRepository tracks which copies are out. A loan with a nil
// return date is outstanding.
type LoanRepository interface {
	CreateLoans(loans []datamodel.Loan) error
	HasOutstanding(userID int64) (bool, error)
	ReturnAll(userID int64, returnedAt time.Time) (int64, error)
}

// Mailer is the fire-and-forget mail side channel.
type Mailer interface {
	Send(to, subject, body string) error
}

// AuthorResponse is the public shape of a book's author.
type AuthorResponse struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// Response is the public shape of a book.
type Response struct {
	Title       string         `json:"title"`
	ISBN        string         `json:"isbn"`
	Quantity    int            `json:"quantity"`
	Resume      string         `json:"resume"`
	IsValid     bool           `json:"isValid"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	Author      AuthorResponse `json:"author"`
}

func ToResponse(b *datamodel.Book) Response {
	return Response{
		Title:       b.Title,
		ISBN:        b.ISBN,
		Quantity:    b.Quantity,
		Resume:      b.Resume,
		IsValid:     b.IsValid,
		PublishedAt: b.PublishedAt,
		Author: AuthorResponse{
			Firstname: b.Author.Firstname,
			Lastname:  b.Author.Lastname,
			Email:     b.Author.Email,
		},
	}
}

func ToResponses(books []datamodel.Book) []Response {
	out := make([]Response, 0, len(books))
	for i := range books {
		out = append(out, ToResponse(&books[i]))
	}
	return out
}
