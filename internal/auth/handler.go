package auth

import (
	"encoding/json"
	"net/http"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	Authorizer *Authorizer
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, authorizer *Authorizer) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
		Authorizer:  authorizer,
	}
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "email", dto.Email)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Register handles POST /api/register: self-registration as reader.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.Register(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, UserResponse{
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Email:     user.Email,
	})
}

// Logout handles POST /api/logout: puts the token on the deny-list.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if err := h.Service.Revoke(token); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/users/me: echoes the authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "you must authenticate")
		return
	}

	h.WriteJSON(w, http.StatusOK, principal)
}

// Middleware verifies the bearer token and stores the principal in the
// request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "you must authenticate")
			return
		}

		claims, err := h.Service.Verify(token)
		if err != nil {
			h.Logger.Warn("token verification failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "you must authenticate")
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission runs the authorization filter against the request's
// method and path. It assumes Middleware already stored the principal.
func (h *Handler) RequirePermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := internal.PrincipalFromContext(r.Context())
		if !ok || principal == nil {
			h.WriteError(w, http.StatusUnauthorized, "you must authenticate")
			return
		}

		granted, err := h.Authorizer.Authorize(principal.RoleIDs, r.Method, r.URL.Path)
		if err != nil {
			h.Logger.Error("authorization check failed", "error", err, "user_id", principal.ID)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !granted {
			h.Logger.Warn("access denied",
				"user_id", principal.ID,
				"method", r.Method,
				"path", r.URL.Path)
			h.WriteError(w, http.StatusForbidden, "you do not have the required permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}
