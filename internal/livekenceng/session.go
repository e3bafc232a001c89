package livekenceng

import (
	"context"
	"encoding/json"
	"fmt"
)

// activeSessionRequest asks for the account's single active live session.
type activeSessionRequest struct {
	credentials
	ShopeeAccountID int `json:"shopee_account_id"`
}

type activeSessionResponse struct {
	envelope
	SessionID sessionID `json:"session_id"`
}

// sessionID tolerates the upstream API returning the session identifier as a
// JSON string, number, or null.
type sessionID string

func (s *sessionID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*s = sessionID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*s = sessionID(asNumber.String())
		return nil
	}
	return fmt.Errorf("session_id must be a string, number, or null, got %s", data)
}

// ActiveSession returns the account's active live session token, or "" when
// no session is live. An empty token is a normal outcome, not an error.
func (c *Client) ActiveSession(ctx context.Context, accountID int) (string, error) {
	req := activeSessionRequest{credentials: c.credentials(), ShopeeAccountID: accountID}

	var resp activeSessionResponse
	if err := c.do(ctx, "POST", "/api/shopee-live/active-session", req, &resp); err != nil {
		return "", err
	}
	return string(resp.SessionID), nil
}
