package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/controllers"
	"voxarena/middlewares"
	"voxarena/models"
	"voxarena/utils"
)

type stubAdmins map[string]*models.Admin

func (s stubAdmins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	if a, ok := s[email]; ok {
		return a, nil
	}
	return nil, models.ErrNotFound
}

func (s stubAdmins) Create(_ context.Context, a *models.Admin) error {
	s[a.Email] = a
	return nil
}

type stubAudit struct{ logs []*models.AdminActionLog }

func (s *stubAudit) Insert(_ context.Context, l *models.AdminActionLog) error {
	s.logs = append(s.logs, l)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, stubAdmins) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("router-test-secret", time.Hour)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	enforcer, err := middlewares.NewEnforcer(nil, log)
	if err != nil {
		t.Fatalf("Failed to build enforcer: %v", err)
	}
	admins := stubAdmins{
		"root@voxarena.dev":   {ID: primitive.NewObjectID(), Email: "root@voxarena.dev", Role: models.AdminRoleAdmin, Name: "root"},
		"editor@voxarena.dev": {ID: primitive.NewObjectID(), Email: "editor@voxarena.dev", Role: models.AdminRoleEditor, Name: "editor"},
	}
	router := NewRouter(Dependencies{
		Admins:         admins,
		Audit:          &stubAudit{},
		Enforcer:       enforcer,
		Log:            log,
		ServiceName:    "voxarena-test",
		AllowedOrigins: []string{"http://localhost:5173"},
		Admin:          controllers.NewAdminController(admins, log),
	})
	return router, admins
}

func bearer(t *testing.T, a *models.Admin) string {
	t.Helper()
	token, _, err := utils.GenerateJWTToken(a.ID.Hex(), a.Email, a.Role)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterGuards(t *testing.T) {
	router, admins := newTestRouter(t)
	root := admins["root@voxarena.dev"]
	editor := admins["editor@voxarena.dev"]

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"api requires a token", http.MethodGet, "/api/debates", "", http.StatusUnauthorized},
		{"me for admin", http.MethodGet, "/api/admin/me", bearer(t, root), http.StatusOK},
		{"editor cannot delete personas", http.MethodDelete, "/api/personas/" + primitive.NewObjectID().Hex(), bearer(t, editor), http.StatusForbidden},
		{"editor cannot add admins", http.MethodPost, "/api/admins", bearer(t, editor), http.StatusForbidden},
		{"editor cannot reload form config", http.MethodPost, "/api/persona-form-config/reload", bearer(t, editor), http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: expected status %d, got %d (%s)", tc.name, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/debates", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}
