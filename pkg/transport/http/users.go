package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/debug"
	"github.com/inventorymaster/storefront/pkg/transport"
	"github.com/inventorymaster/storefront/pkg/users"
)

// userHandlers serves /api/users.
type userHandlers struct {
	svc         *users.Service
	authn       *auth.Authenticator
	cookie      auth.CookieConfig
	maxBodySize int64
	logger      *slog.Logger
	now         func() time.Time
}

// register handles POST /api/users/register.
func (h *userHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.cookie.TokenCookie(session.Token, session.TTL, h.now()))
	transport.WriteJSON(w, http.StatusCreated, session.User)
}

// login handles POST /api/users/login.
func (h *userHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.cookie.TokenCookie(session.Token, session.TTL, h.now()))
	transport.WriteJSON(w, http.StatusOK, session.User)
}

// logout handles GET /api/users/logout.
func (h *userHandlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie.ExpiredCookie())
	transport.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "successfully logged out"})
}

// loggedIn handles GET /api/users/loggedin.
func (h *userHandlers) loggedIn(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, h.authn.LoggedIn(r))
}

// getUser handles GET /api/users/getuser.
func (h *userHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError(auth.NotAuthorizedMessage))
		return
	}
	transport.WriteJSON(w, http.StatusOK, user)
}

// updateUser handles PATCH /api/users/updateuser.
func (h *userHandlers) updateUser(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError(auth.NotAuthorizedMessage))
		return
	}

	var req api.UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateUser(r.Context(), user.ID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, updated)
}

// changePassword handles PATCH /api/users/changepassword.
func (h *userHandlers) changePassword(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError(auth.NotAuthorizedMessage))
		return
	}

	var req api.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), user.ID, req); err != nil {
		h.writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "password changed successfully"})
}

// decode reads a JSON body into v. On failure it writes the error response
// and returns false.
func (h *userHandlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return false
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		debug.Log("transport", "request body rejected",
			"request_id", transport.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", h.maxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
		case errors.Is(err, io.EOF):
			transport.WriteAPIError(w, api.NewInvalidRequestError("body", "request body is required"))
		default:
			transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		}
		return false
	}
	return true
}

// writeError writes client errors as-is and hides everything else behind a
// generic server error.
func (h *userHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		transport.WriteAPIError(w, apiErr)
		return
	}

	h.logger.Error("request failed",
		"request_id", transport.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	transport.WriteAPIError(w, api.NewServerError("internal server error"))
}
