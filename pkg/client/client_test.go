package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/bodega-inventory/pkg/logger"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeAPI stands in for the bodega server: one user, one live token, and a
// role that can be changed between calls.
type fakeAPI struct {
	role     atomic.Value
	revoked  atomic.Bool
	logouts  atomic.Int32
	products atomic.Int32
}

func (f *fakeAPI) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer tok-bob" || f.revoked.Load() {
		f.write(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "token revoked", "code": "TOKEN_REVOKED"})
		return false
	}
	return true
}

func (f *fakeAPI) profile() map[string]any {
	return map[string]any{"id": 3, "username": "bob", "name": "Bob", "role": f.role.Load().(string)}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username != "bob" || body.Password != "correct_password" {
			f.write(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid username or password", "code": "INVALID_CREDENTIALS"})
			return
		}
		f.write(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"token": "tok-bob", "user": f.profile()}})
	})
	mux.HandleFunc("POST /auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.write(w, http.StatusOK, map[string]any{"success": true})
		}
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.write(w, http.StatusOK, map[string]any{"success": true, "data": f.profile()})
		}
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.logouts.Add(1)
		f.revoked.Store(true)
		f.write(w, http.StatusOK, map[string]any{"success": true, "message": "logged out"})
	})
	mux.HandleFunc("DELETE /api/products/1", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		if f.role.Load().(string) == string(permission.RoleUser) {
			f.write(w, http.StatusForbidden, map[string]any{"success": false, "error": "insufficient permissions", "code": "INSUFFICIENT_PERMISSIONS"})
			return
		}
		f.products.Add(1)
		f.write(w, http.StatusOK, map[string]any{"success": true, "message": "deleted"})
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		if f.authorized(w, r) {
			f.write(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{{"id": 1, "name": "Martillo"}}})
		}
	})
	mux.HandleFunc("GET /api/reports/general", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal server error", "code": "INTERNAL_ERROR"})
	})
	return mux
}

var _ = Describe("Client", func() {
	var (
		api *fakeAPI
		srv *httptest.Server
		c   *Client
		ctx context.Context
	)

	newClient := func(baseURL string, timeout time.Duration) *Client {
		lg := logger.Discard()
		return New(Config{BaseURL: baseURL + "/", Timeout: timeout}, NewSessionStore(NewMemoryStorage(), lg), lg)
	}

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeAPI{}
		api.role.Store(string(permission.RoleUser))
		srv = httptest.NewServer(api.handler())
		DeferCleanup(srv.Close)
		c = newClient(srv.URL, 0)
	})

	Describe("Login", func() {
		It("stores the session on success", func() {
			p, err := c.Login(ctx, "bob", "correct_password")
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Username).To(Equal("bob"))
			Expect(p.Role).To(Equal(permission.RoleUser))
			Expect(c.Session().Token()).To(Equal("tok-bob"))
			Expect(c.Session().CurrentUser().Name).To(Equal("Bob"))
		})

		It("leaves no session on a wrong password", func() {
			_, err := c.Login(ctx, "bob", "nope")
			Expect(err).To(MatchError(ErrInvalidCredentials))
			Expect(c.Session().IsAuthenticated()).To(BeFalse())
		})

		It("answers an unknown user the same way", func() {
			_, err := c.Login(ctx, "nobody", "correct_password")
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("reports an unreachable server as unavailable", func() {
			offline := newClient("http://127.0.0.1:1", 0)
			_, err := offline.Login(ctx, "bob", "correct_password")
			Expect(err).To(MatchError(ErrUnavailable))
			Expect(offline.Session().IsAuthenticated()).To(BeFalse())
		})

		It("reports a timeout as unavailable", func() {
			slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			DeferCleanup(slow.Close)

			_, err := newClient(slow.URL, 50*time.Millisecond).Login(ctx, "bob", "correct_password")
			Expect(err).To(MatchError(ErrUnavailable))
		})
	})

	It("verifies and logs out", func() {
		Expect(c.VerifyToken(ctx)).To(BeFalse())

		_, err := c.Login(ctx, "bob", "correct_password")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.VerifyToken(ctx)).To(BeTrue())

		Expect(c.Logout(ctx)).To(Succeed())
		Expect(api.logouts.Load()).To(Equal(int32(1)))
		Expect(c.Session().IsAuthenticated()).To(BeFalse())

		Expect(c.Logout(ctx)).To(Succeed())
		Expect(api.logouts.Load()).To(Equal(int32(1)))
	})

	Context("with a session", func() {
		BeforeEach(func() {
			_, err := c.Login(ctx, "bob", "correct_password")
			Expect(err).NotTo(HaveOccurred())
		})

		It("drops the session when a call is rejected with 401", func() {
			Expect(NewGuard(c.Session()).State()).To(Equal(Authenticated))
			api.revoked.Store(true)

			var products []map[string]any
			err := c.Do(ctx, http.MethodGet, "/api/products", nil, &products)
			Expect(err).To(MatchError(ErrUnauthorized))
			Expect(c.Session().IsAuthenticated()).To(BeFalse())
			Expect(c.Session().CurrentUser()).To(BeNil())
			Expect(NewGuard(c.Session()).State()).To(Equal(Anonymous))

			var apiErr *APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Code).To(Equal("TOKEN_REVOKED"))
		})

		It("drops the session when verification is rejected", func() {
			api.revoked.Store(true)
			Expect(c.VerifyToken(ctx)).To(BeFalse())
			Expect(c.Session().IsAuthenticated()).To(BeFalse())
		})

		It("keeps the session on 403", func() {
			err := c.Do(ctx, http.MethodDelete, "/api/products/1", nil, nil)
			Expect(err).To(MatchError(ErrForbidden))
			Expect(c.Session().IsAuthenticated()).To(BeTrue())
			Expect(api.products.Load()).To(BeZero())
		})

		It("maps server errors to unavailable", func() {
			err := c.Do(ctx, http.MethodGet, "/api/reports/general", nil, nil)
			Expect(err).To(MatchError(ErrUnavailable))
			Expect(c.Session().IsAuthenticated()).To(BeTrue())
		})

		// A user tries the user management page and is sent back to
		// inventory. Once promoted and refreshed, the same page opens.
		It("picks up a role change after a refresh", func() {
			guard := NewGuard(c.Session())

			d := guard.EnterPage(permission.UsersRoute)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Redirect).To(Equal(permission.InventoryRoute))
			Expect(guard.Can(permission.DeleteProduct)).To(BeFalse())

			api.role.Store(string(permission.RoleSuperAdmin))
			Expect(guard.EnterPage(permission.UsersRoute).Allowed).To(BeFalse())

			p, err := c.RefreshProfile(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Role).To(Equal(permission.RoleSuperAdmin))
			Expect(guard.EnterPage(permission.UsersRoute).Allowed).To(BeTrue())
			Expect(guard.Can(permission.DeleteProduct)).To(BeTrue())

			Expect(c.Do(ctx, http.MethodDelete, "/api/products/1", nil, nil)).To(Succeed())
			Expect(api.products.Load()).To(Equal(int32(1)))
		})
	})

	It("never sends a request without a session", func() {
		var hits atomic.Int32
		counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		DeferCleanup(counting.Close)

		err := newClient(counting.URL, 0).Do(ctx, http.MethodGet, "/api/products", nil, nil)
		Expect(err).To(MatchError(ErrUnauthorized))
		Expect(hits.Load()).To(BeZero())
	})

	It("formats API errors", func() {
		err := statusError(http.StatusForbidden, envelope{Error: "insufficient permissions", Code: "INSUFFICIENT_PERMISSIONS"})
		Expect(err.Error()).To(ContainSubstring("insufficient permissions"))
		Expect(err).To(MatchError(ErrForbidden))

		Expect(statusError(http.StatusBadRequest, envelope{}).Error()).To(Equal("request failed with status 400"))
	})
})
