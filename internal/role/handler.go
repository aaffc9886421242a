package role

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stonelib/library-management/internal/core/datamodel"
	"github.com/stonelib/library-management/internal/transport"
)

type ServiceAPI interface {
	List(limit, offset int) ([]datamodel.Role, error)
	GetByID(id int64) (*datamodel.Role, error)
	Create(dto CreateDTO) (*datamodel.Role, error)
	Update(id int64, dto UpdateDTO) (*datamodel.Role, error)
	AddPermissions(roleID int64, dto PermissionsDTO) (*datamodel.Role, error)
	RemovePermissions(roleID int64, dto PermissionsDTO) (*datamodel.Role, error)
	Delete(id int64) (*datamodel.Role, error)
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

// GetRoles handles GET /api/roles with page/perpage pagination.
func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Pagination(r)

	roles, err := h.Service.List(limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(roles))
}

// GetRole handles GET /api/roles/{roleID}.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "roleID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	role, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(role))
}

// CreateRole handles POST /api/roles.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
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

// UpdateRole handles PUT /api/roles/{roleID}.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "roleID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
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

// AddPermissions handles POST /api/roles/{roleID}/permissions.
func (h *Handler) AddPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "roleID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var dto PermissionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.AddPermissions(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToResponse(updated))
}

// RemovePermissions handles PUT /api/roles/{roleID}/permissions.
func (h *Handler) RemovePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "roleID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var dto PermissionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.RemovePermissions(id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(updated))
}

// DeleteRole handles DELETE /api/roles/{roleID}.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "roleID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	deleted, err := h.Service.Delete(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("role '%s' deleted successfully", deleted.Name),
	})
}
