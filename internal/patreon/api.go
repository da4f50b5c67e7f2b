package patreon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Scopes requested when linking a member: identity, email and campaign
// membership read.
var Scopes = []string{"identity", "identity[email]", "campaigns"}

// Client calls the Patreon v2 API on behalf of a linked member. The inner
// http.Client is expected to inject the member's bearer token (an
// oauth2-authorized client in production).
type Client struct {
	base       string
	httpClient *http.Client
}

// NewClient returns an API client rooted at base (the production API base in
// normal operation, a test server otherwise).
func NewClient(base string, httpClient *http.Client) *Client {
	return &Client{base: base, httpClient: httpClient}
}

func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bad response code %s: %s", resp.Status, body)
	}
	return json.Unmarshal(body, dst)
}

// Identity fetches the authenticated member's own user record.
func (c *Client) Identity(ctx context.Context) (*IdentityResponse, error) {
	var r IdentityResponse
	if err := c.get(ctx, "/identity", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// EntitledTiers fetches the member's currently-entitled tiers. The result may
// be empty for a connected-but-unpaid account.
func (c *Client) EntitledTiers(ctx context.Context, patreonUserID string) ([]EntitledTier, error) {
	v := url.Values{}
	v.Set("include", "currently_entitled_tiers")
	v.Set("fields[tier]", "title,amount_cents")
	v.Set("filter[user_id]", patreonUserID)

	var r MembersResponse
	if err := c.get(ctx, "/members?"+v.Encode(), &r); err != nil {
		return nil, err
	}
	return collectTiers(r.Included, nil), nil
}

// collectTiers extracts tier descriptors from a JSON:API included array.
// When entitledIDs is non-nil, only tiers referenced by it are kept.
func collectTiers(included []Include, entitledIDs map[string]bool) []EntitledTier {
	var tiers []EntitledTier
	for _, inc := range included {
		if inc.Type != "tier" {
			continue
		}
		if entitledIDs != nil && !entitledIDs[inc.ID] {
			continue
		}
		tiers = append(tiers, EntitledTier{
			Title:       inc.Attributes.Title,
			AmountCents: inc.Attributes.AmountCents,
		})
	}
	return tiers
}

// IdentityResponse is the /identity envelope.
type IdentityResponse struct {
	Data IdentityData `json:"data"`
}

type IdentityData struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes UserAttributes `json:"attributes"`
}

type UserAttributes struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// MembersResponse is the /members envelope with tier includes.
type MembersResponse struct {
	Data     []MemberData `json:"data"`
	Included []Include    `json:"included"`
}

type MemberData struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Relationships Relationships `json:"relationships"`
}

type Relationships struct {
	User  RelationshipRef  `json:"user"`
	Tiers RelationshipList `json:"currently_entitled_tiers"`
}

type RelationshipRef struct {
	Data *RelationshipData `json:"data"`
}

type RelationshipList struct {
	Data []RelationshipData `json:"data"`
}

type RelationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Include is a JSON:API included object. Only tier attributes are modelled;
// other include types are skipped by callers.
type Include struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes TierAttributes `json:"attributes"`
}

type TierAttributes struct {
	Title       string `json:"title"`
	AmountCents int    `json:"amount_cents"`
}
