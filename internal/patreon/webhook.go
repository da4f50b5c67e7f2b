package patreon

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/miragepark/community-portal/internal/config"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/util"
	"gorm.io/gorm"
)

// Webhook event types pushed by Patreon.
const (
	EventPledgeCreate = "members:pledge:create"
	EventPledgeUpdate = "members:pledge:update"
	EventPledgeDelete = "members:pledge:delete"
)

// webhookPayload is the member/pledge envelope Patreon posts. Tier objects
// referenced by currently_entitled_tiers arrive in the included array.
type webhookPayload struct {
	Data struct {
		ID            string        `json:"id"`
		Type          string        `json:"type"`
		Relationships Relationships `json:"relationships"`
	} `json:"data"`
	Included []Include `json:"included"`
}

// WebhookHandler ingests Patreon pledge notifications at /patreon-webhook and
// keeps stored membership tiers fresh without any user-initiated request.
//
// Unknown event types are acknowledged with 200: Patreon treats non-2xx as a
// request for redelivery, so rejecting harmless events would loop forever.
func WebhookHandler(database *gorm.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeWebhookError(w, "Failed to read request body")
			return
		}

		signature := r.Header.Get("x-patreon-signature")
		if signature == "" {
			writeWebhookError(w, "Missing webhook signature")
			return
		}
		if !verifySignature(body, signature, cfg.PatreonWebhookSecret) {
			log.Printf("Patreon webhook: signature mismatch, body %s", util.TruncateBytes(body))
			writeWebhookError(w, "Invalid webhook signature")
			return
		}

		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			writeWebhookError(w, "Invalid webhook payload")
			return
		}

		eventType := r.Header.Get("x-patreon-event")
		switch eventType {
		case EventPledgeCreate, EventPledgeUpdate:
			err = applyPledgeUpdate(database, &payload)
		case EventPledgeDelete:
			err = applyPledgeDelete(database, &payload)
		default:
			log.Printf("Patreon webhook: unhandled event type %q", eventType)
		}

		if err != nil {
			log.Printf("Patreon webhook: %s failed: %v", eventType, err)
			writeWebhookError(w, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}
}

// verifySignature checks the hex HMAC-MD5 of the raw body against the shared
// webhook secret, Patreon's signing scheme.
func verifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(md5.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// applyPledgeUpdate re-resolves the member's tier from the pushed payload and
// stores it on the profile matched by Patreon member id.
func applyPledgeUpdate(database *gorm.DB, payload *webhookPayload) error {
	patreonUserID := payloadUserID(payload)
	if patreonUserID == "" {
		return fmt.Errorf("Missing Patreon user ID in payload")
	}

	entitled := make(map[string]bool)
	for _, ref := range payload.Data.Relationships.Tiers.Data {
		entitled[ref.ID] = true
	}

	tier := ResolveTier(collectTiers(payload.Included, entitled))

	if err := db.UpdatePatreonTier(database, patreonUserID, tier.String()); err != nil {
		return fmt.Errorf("Failed to update user tier: %v", err)
	}
	log.Printf("Patreon webhook: member %s resolved to %q", patreonUserID, tier)
	return nil
}

// applyPledgeDelete clears the member's tier. The connected flag stays set;
// only an explicit user disconnect clears it.
func applyPledgeDelete(database *gorm.DB, payload *webhookPayload) error {
	patreonUserID := payloadUserID(payload)
	if patreonUserID == "" {
		return fmt.Errorf("Missing Patreon user ID in payload")
	}

	if err := db.ClearPatreonTier(database, patreonUserID); err != nil {
		return fmt.Errorf("Failed to update user tier: %v", err)
	}
	log.Printf("Patreon webhook: cleared tier for member %s", patreonUserID)
	return nil
}

func payloadUserID(payload *webhookPayload) string {
	if payload.Data.Relationships.User.Data == nil {
		return ""
	}
	return payload.Data.Relationships.User.Data.ID
}

func writeWebhookError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
