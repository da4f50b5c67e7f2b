package patreon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/config"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/db/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// upstreamTimeout bounds every outbound Patreon call on the OAuth path. The
// browser is parked on the redirect chain for the whole flow, so a hang
// upstream must not hang the request forever.
const upstreamTimeout = 10 * time.Second

// linkStateTTL is how long a minted state token stays valid.
const linkStateTTL = 15 * time.Minute

// OAuthConfig builds the oauth2 config for the Patreon authorization-code
// flow. Patreon expects client credentials in the POST body and a
// byte-identical redirect_uri on both legs of the flow.
func OAuthConfig(cfg *config.Config, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.PatreonClientID,
		ClientSecret: cfg.PatreonClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.PatreonAuthURL,
			TokenURL:  cfg.PatreonTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// OAuthHandler drives the Patreon link flow at /patreon-oauth.
//
// Without a code it validates the caller's bearer credential, mints a
// single-use state token and redirects to Patreon's consent page. With a code
// it exchanges the state for the local identity, the code for tokens, fetches
// identity and entitled tiers, resolves the tier and upserts the link.
// The bearer credential itself never crosses the Patreon hop; the opaque
// state token stands in for it.
func OAuthHandler(database *gorm.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") == "" {
			beginLink(w, r, database, cfg)
			return
		}
		completeLink(w, r, database, cfg)
	}
}

// beginLink is the entry leg: no authorization code yet.
func beginLink(w http.ResponseWriter, r *http.Request, database *gorm.DB, cfg *config.Config) {
	redirectURL := r.URL.Query().Get("redirect_url")
	if redirectURL == "" {
		redirectURL = cfg.AppOrigin
	}

	token := auth.BearerFromRequest(r)
	if token == "" {
		renderErrorPage(w, http.StatusUnauthorized, "Missing authentication token")
		return
	}

	userID, err := auth.VerifyToken(database, token)
	if err != nil {
		redirectSignIn(w, r, cfg, "Authentication failed. Please login and try again.")
		return
	}

	state := uuid.New().String()
	if err := database.Create(&models.LinkState{
		State:       state,
		UserID:      userID,
		RedirectURL: redirectURL,
		ExpiresAt:   time.Now().Add(linkStateTTL),
	}).Error; err != nil {
		renderErrorPage(w, http.StatusInternalServerError, "Failed to start Patreon link")
		return
	}

	conf := OAuthConfig(cfg, callbackURL(r))
	http.Redirect(w, r, conf.AuthCodeURL(state), http.StatusFound)
}

// completeLink is the callback leg: Patreon redirected back with a code.
func completeLink(w http.ResponseWriter, r *http.Request, database *gorm.DB, cfg *config.Config) {
	state := r.URL.Query().Get("state")
	if state == "" {
		redirectSignIn(w, r, cfg, "Missing authentication token. Please try connecting again.")
		return
	}

	linkState, err := consumeLinkState(database, state)
	if err != nil {
		redirectSignIn(w, r, cfg, "Authentication failed. Please login and try again.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	conf := OAuthConfig(cfg, callbackURL(r))
	token, err := conf.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil || token.AccessToken == "" {
		log.Printf("Patreon OAuth: token exchange failed: %v", err)
		renderErrorPage(w, http.StatusBadRequest, "Failed to get Patreon access token")
		return
	}

	client := NewClient(cfg.PatreonAPIBase, conf.Client(ctx, token))

	identity, err := client.Identity(ctx)
	if err != nil || identity.Data.ID == "" {
		log.Printf("Patreon OAuth: identity fetch failed: %v", err)
		renderErrorPage(w, http.StatusBadRequest, "Failed to get Patreon user identity")
		return
	}

	tiers, err := client.EntitledTiers(ctx, identity.Data.ID)
	if err != nil {
		log.Printf("Patreon OAuth: entitled tiers fetch failed: %v", err)
		renderErrorPage(w, http.StatusBadRequest, "Failed to get Patreon membership data")
		return
	}

	tier := ResolveTier(tiers)

	// Terminal write: nothing was persisted before this point, so a failed
	// flow never leaves a partial link behind.
	err = db.UpsertPatreonLink(database, linkState.UserID, db.PatreonLink{
		PatreonID:    identity.Data.ID,
		Tier:         tier.String(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	})
	if err != nil {
		// The local user is known here, so surface the failure on the
		// profile page instead of a bare error body.
		redirectProfileError(w, r, cfg, "Failed to update user profile: "+err.Error())
		return
	}

	log.Printf("Patreon OAuth: linked member %s as %q for user %s", identity.Data.ID, tier, linkState.UserID)
	http.Redirect(w, r, linkState.RedirectURL, http.StatusFound)
}

// consumeLinkState loads and deletes a state row. A state token is single
// use; replaying a callback fails here.
func consumeLinkState(database *gorm.DB, state string) (*models.LinkState, error) {
	var linkState models.LinkState
	if err := database.Where("state = ?", state).First(&linkState).Error; err != nil {
		return nil, fmt.Errorf("unknown state token")
	}
	database.Delete(&models.LinkState{}, "state = ?", state)
	if time.Now().After(linkState.ExpiresAt) {
		return nil, fmt.Errorf("state token expired")
	}
	return &linkState, nil
}

// callbackURL rebuilds this handler's own absolute URL from the request.
// Both legs produce the same string, which Patreon requires for the exchange.
func callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path)
}

func redirectSignIn(w http.ResponseWriter, r *http.Request, cfg *config.Config, message string) {
	http.Redirect(w, r, cfg.AppOrigin+"/auth?error=auth_error&message="+url.QueryEscape(message), http.StatusFound)
}

func redirectProfileError(w http.ResponseWriter, r *http.Request, cfg *config.Config, message string) {
	http.Redirect(w, r, cfg.AppOrigin+"/profile?error=patreon_error&message="+url.QueryEscape(message), http.StatusFound)
}

// renderErrorPage writes the minimal standalone error page shown for
// browser-visible failures before the local user is identifiable.
func renderErrorPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
	<title>Patreon Connection Error</title>
	<style>
		body { font-family: Arial, sans-serif; background: #121212; color: white; text-align: center; padding: 50px; }
		.container { max-width: 600px; margin: 0 auto; background: #1a1a1a; padding: 30px; border-radius: 8px; }
		.error { color: #ff5555; margin: 20px 0; }
		.button { background: #626AF1; color: white; padding: 10px 20px; border-radius: 4px; text-decoration: none; display: inline-block; margin-top: 20px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Patreon Connection Failed</h1>
		<p class="error">%s</p>
		<p>There was an issue connecting your Patreon account. Please try again.</p>
		<a href="/" class="button">Return to Home</a>
	</div>
</body>
</html>`, message)
}
