package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/transport"
	"github.com/frahmantamala/bodega-inventory/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	VerifyToken(ctx context.Context, token string) bool
	Authenticate(ctx context.Context, token string) (*internal.Principal, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("login failed", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, result)
}

// Verify handles POST /auth/verify. It answers {success: bool} and never
// exposes why a token was rejected.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" || !h.Service.VerifyToken(r.Context(), token) {
		h.WriteJSON(w, http.StatusUnauthorized, transport.Envelope{Success: false, Error: "invalid token"})
		return
	}
	h.WriteJSON(w, http.StatusOK, transport.Envelope{Success: true})
}

// Me handles GET /auth/me and returns the caller's current record.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	h.WriteSuccess(w, http.StatusOK, ProfileFromPrincipal(p))
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	if err := h.Service.Logout(r.Context(), token); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "logged out")
}

// AuthMiddleware rejects requests without a valid bearer token before any
// handler or data access runs, and stores the caller in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.ErrMissingToken)
			return
		}

		principal, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err, "path", r.URL.Path)
			h.WriteAppError(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "user_id", principal.ID, "role", principal.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
