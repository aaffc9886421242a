package book

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/datamodel"
	"github.com/stonelib/library-management/internal/transport"
)

type ServiceAPI interface {
	List(status string, limit, offset int) ([]datamodel.Book, error)
	GetByID(id int64) (*datamodel.Book, error)
	Create(authorID int64, dto CreateDTO) (*datamodel.Book, error)
	Update(id int64, dto UpdateDTO) (*datamodel.Book, error)
	Validate(id int64) (*datamodel.Book, error)
	Reject(id int64, dto RejectDTO) (*datamodel.Book, error)
	Loan(principal *internal.Principal, dto LoanDTO) ([]datamodel.Loan, error)
	Return(principal *internal.Principal) (int64, error)
	Delete(id int64) (*datamodel.Book, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// GetBooks handles GET /api/books with an optional status filter and
// page/perpage pagination.
func (h *Handler) GetBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r)
	status := r.URL.Query().Get("status")

	books, err := h.Service.List(status, limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(books))
}

// GetBook handles GET /api/books/{bookID}.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "bookID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(book))
}

// CreateBook handles POST /api/books. The caller becomes the author.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(principal.ID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToResponse(created))
}

// UpdateBook handles PUT /api/books/{bookID}.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "bookID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(updated))
}

// ValidateBook handles PUT /api/books/{bookID}/validate.
func (h *Handler) ValidateBook(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "bookID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	validated, err := h.Service.Validate(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(validated))
}

// RejectBook handles POST /api/books/{bookID}/reject.
func (h *Handler) RejectBook(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "bookID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	// the rejection message is optional, an empty body is fine
	var dto RejectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && err != io.EOF {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rejected, err := h.Service.Reject(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("book '%s' rejected, the author has been notified", rejected.Title),
	})
}

// LoanBooks handles POST /api/books/loan.
func (h *Handler) LoanBooks(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto LoanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loans, err := h.Service.Loan(principal, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("%d book(s) loaned successfully", len(loans)),
	})
}

// ReturnBooks handles PUT /api/books/return. Every outstanding loan of
// the caller is closed at once.
func (h *Handler) ReturnBooks(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	returned, err := h.Service.Return(principal)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d book(s) returned successfully", returned),
	})
}

// DeleteBook handles DELETE /api/books/{bookID}.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "bookID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	deleted, err := h.Service.Delete(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("book '%s' deleted successfully", deleted.Title),
	})
}
