package patreon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/db/models"
)

func TestConnectHandlerRedirects(t *testing.T) {
	database := newTestDB(t)
	cfg := testConfig()
	seedSession(t, database, "sess-1", "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/patreon/connect", nil)
	req.Header.Set("Authorization", "Bearer sess-1")
	rec := httptest.NewRecorder()
	ConnectHandler(database, cfg)(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	want := "/patreon-oauth?redirect_url=" + url.QueryEscape("http://app.test/profile") +
		"&auth_token=" + url.QueryEscape("sess-1")
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("redirect = %s, want %s", got, want)
	}
}

func TestConnectHandlerUnauthenticated(t *testing.T) {
	database := newTestDB(t)

	req := httptest.NewRequest(http.MethodGet, "/api/patreon/connect", nil)
	rec := httptest.NewRecorder()
	ConnectHandler(database, testConfig())(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	database := newTestDB(t)
	seedProfile(t, database, models.Profile{UserID: "user-1", PatreonConnected: true, PatreonTier: "founder"})
	seedProfile(t, database, models.Profile{UserID: "user-2", PatreonConnected: true})

	status := func(userID string) map[string]interface{} {
		req := httptest.NewRequest(http.MethodGet, "/api/patreon/status", nil)
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		StatusHandler(database)(rec, req)

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to parse status body: %v", err)
		}
		return body
	}

	got := status("user-1")
	if got["connected"] != true || got["tier"] != "founder" {
		t.Errorf("status = %v, want connected founder", got)
	}

	// Connected without a paid tier reports tier null.
	got = status("user-2")
	if got["connected"] != true || got["tier"] != nil {
		t.Errorf("status = %v, want connected with null tier", got)
	}

	got = status("nobody")
	if got["connected"] != false {
		t.Errorf("status = %v, want disconnected for unknown profile", got)
	}
}

func TestDisconnectHandler(t *testing.T) {
	database := newTestDB(t)
	seedProfile(t, database, models.Profile{
		UserID:              "user-1",
		PatreonID:           "p-1",
		PatreonConnected:    true,
		PatreonTier:         "supporter",
		PatreonToken:        "at-1",
		PatreonRefreshToken: "rt-1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/patreon/disconnect", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	DisconnectHandler(database)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	profile := loadProfileByUserID(t, database, "user-1")
	if profile.PatreonConnected {
		t.Errorf("profile still connected after disconnect")
	}
	if profile.PatreonTier != "" {
		t.Errorf("tier = %q, want empty after disconnect", profile.PatreonTier)
	}
}
