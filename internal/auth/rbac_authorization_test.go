package auth_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/auth"
	"github.com/frahmantamala/bodega-inventory/pkg/logger"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RBACAuthorization", func() {
	var (
		rbac     *auth.RBACAuthorization
		recorder *countingRecorder
		called   bool
		next     http.HandlerFunc
	)

	BeforeEach(func() {
		recorder = newCountingRecorder()
		rbac = auth.NewRBACAuthorization(logger.Discard(), recorder)
		called = false
		next = func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}
	})

	requestAs := func(role permission.Role) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/general", nil)
		if role == "" {
			return req
		}
		p := &internal.Principal{ID: 9, Username: "someone", Role: role}
		return req.WithContext(internal.ContextWithPrincipal(req.Context(), p))
	}

	DescribeTable("Check",
		func(role permission.Role, perm permission.Permission, want int) {
			rec := httptest.NewRecorder()
			rbac.Check(next, perm)(rec, requestAs(role))

			Expect(rec.Code).To(Equal(want))
			Expect(called).To(Equal(want == http.StatusOK))
		},
		Entry("user views inventory", permission.RoleUser, permission.ViewInventory, http.StatusOK),
		Entry("user cannot add products", permission.RoleUser, permission.AddProduct, http.StatusForbidden),
		Entry("admin deletes products", permission.RoleAdmin, permission.DeleteProduct, http.StatusOK),
		Entry("admin cannot view reports", permission.RoleAdmin, permission.ViewReports, http.StatusForbidden),
		Entry("super_admin manages users", permission.RoleSuperAdmin, permission.ManageUsers, http.StatusOK),
		Entry("super_admin denied an unknown permission", permission.RoleSuperAdmin, permission.Permission("LAUNCH_ROCKETS"), http.StatusForbidden),
		Entry("no principal", permission.Role(""), permission.ViewInventory, http.StatusUnauthorized),
	)

	It("records denials by permission", func() {
		rbac.Check(next, permission.ExportReports)(httptest.NewRecorder(), requestAs(permission.RoleUser))
		Expect(recorder.denied[string(permission.ExportReports)]).To(Equal(1))
	})

	It("works as chi-style middleware", func() {
		rec := httptest.NewRecorder()
		rbac.Middleware(permission.ViewUsers)(next).ServeHTTP(rec, requestAs(permission.RoleAdmin))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	DescribeTable("RequireRole",
		func(role, required permission.Role, want int) {
			rec := httptest.NewRecorder()
			rbac.RequireRole(required)(next).ServeHTTP(rec, requestAs(role))
			Expect(rec.Code).To(Equal(want))
		},
		Entry("super_admin meets admin", permission.RoleSuperAdmin, permission.RoleAdmin, http.StatusOK),
		Entry("admin meets admin", permission.RoleAdmin, permission.RoleAdmin, http.StatusOK),
		Entry("user below admin", permission.RoleUser, permission.RoleAdmin, http.StatusForbidden),
		Entry("unknown required role", permission.RoleSuperAdmin, permission.Role("owner"), http.StatusForbidden),
		Entry("no principal", permission.Role(""), permission.RoleUser, http.StatusUnauthorized),
	)
})
