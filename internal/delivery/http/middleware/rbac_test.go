package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
)

func routerWithRole(role entity.UserRole, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userRole", string(role))
		c.Next()
	})
	r.GET("/guarded", guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	return w.Code
}

func TestRequireCapability(t *testing.T) {
	cases := []struct {
		name string
		role entity.UserRole
		cap  entity.Capability
		want int
	}{
		{"super_admin passe partout", entity.RoleSuperAdmin, entity.CapDelete, http.StatusOK},
		{"chef de service peut affecter", entity.RoleDepartmentHead, entity.CapAssign, http.StatusOK},
		{"chef de service ne supprime pas", entity.RoleDepartmentHead, entity.CapDelete, http.StatusForbidden},
		{"terrain change le statut", entity.RoleFieldStaff, entity.CapChangeStatus, http.StatusOK},
		{"terrain n'affecte pas", entity.RoleFieldStaff, entity.CapAssign, http.StatusForbidden},
		{"citoyen commente", entity.RoleCitizen, entity.CapComment, http.StatusOK},
		{"citoyen ne change pas la priorité", entity.RoleCitizen, entity.CapChangePriority, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := routerWithRole(tc.role, RequireCapability(tc.cap))
			if got := get(r); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestStaffOnly(t *testing.T) {
	if got := get(routerWithRole(entity.RoleFieldStaff, StaffOnly())); got != http.StatusOK {
		t.Errorf("Expected staff to pass, got %d", got)
	}
	if got := get(routerWithRole(entity.RoleCitizen, StaffOnly())); got != http.StatusForbidden {
		t.Errorf("Expected citizen blocked, got %d", got)
	}
}

func TestAdminOnly(t *testing.T) {
	if got := get(routerWithRole(entity.RoleSuperAdmin, AdminOnly())); got != http.StatusOK {
		t.Errorf("Expected admin to pass, got %d", got)
	}
	if got := get(routerWithRole(entity.RoleDepartmentHead, AdminOnly())); got != http.StatusForbidden {
		t.Errorf("Expected department head blocked, got %d", got)
	}
}
