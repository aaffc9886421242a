package user

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stonelib/library-management/internal/core/datamodel"
	"github.com/stonelib/library-management/internal/transport"
)

type ServiceAPI interface {
	List(limit, offset int) ([]datamodel.User, error)
	GetByID(id int64) (*datamodel.User, error)
	Create(dto CreateDTO) (*datamodel.User, error)
	AddRoles(userID int64, dto AddRolesDTO) (*datamodel.User, error)
	Update(id int64, dto UpdateDTO) (*datamodel.User, error)
	Delete(id int64) (*datamodel.User, error)
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

// GetUsers handles GET /api/users with page/perpage pagination.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r)

	users, err := h.Service.List(limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(users))
}

// GetUser handles GET /api/users/{userID}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "userID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(user))
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToResponse(created))
}

// AddRoles handles POST /api/users/{userID}/roles.
func (h *Handler) AddRoles(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "userID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var dto AddRolesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.AddRoles(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToResponse(updated))
}

// UpdateUser handles PUT /api/users/{userID}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "userID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
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

	resp := ToResponse(updated)
	resp.Roles = nil
	h.WriteJSON(w, http.StatusOK, resp)
}

// DeleteUser handles DELETE /api/users/{userID}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "userID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	deleted, err := h.Service.Delete(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user '%s %s' deleted successfully", deleted.Lastname, deleted.Firstname),
	})
}
