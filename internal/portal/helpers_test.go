package portal

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to init test database: %v", err)
	}
	return database
}

func seedProfile(t *testing.T, database *gorm.DB, profile models.Profile) models.Profile {
	t.Helper()
	if err := database.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
	return profile
}

// serve routes a single request through a chi router so URL params resolve.
func serve(method, target, body string, userID string, register func(r chi.Router)) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	register(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse body %q: %v", rec.Body.String(), err)
	}
	return body
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}
