package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const oneSignalURL = "https://onesignal.com/api/v1/notifications"

// OneSignalGateway delivers notifications through the OneSignal REST API.
// Endpoint tokens are OneSignal player ids.
type OneSignalGateway struct {
	appID   string
	apiKey  string
	apiURL  string
	httpCli *http.Client
}

// NewOneSignalGateway builds a OneSignal client. Both the app id and the REST
// API key are required.
func NewOneSignalGateway(appID, apiKey string) (*OneSignalGateway, error) {
	if appID == "" || apiKey == "" {
		return nil, fmt.Errorf("OneSignal app id and API key must be set")
	}
	return &OneSignalGateway{
		appID:   appID,
		apiKey:  apiKey,
		apiURL:  oneSignalURL,
		httpCli: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Name identifies the backend in logs
func (g *OneSignalGateway) Name() string { return "onesignal" }

// createRequest is the OneSignal notification create payload
type createRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	CollapseID       string            `json:"collapse_id,omitempty"`
}

// createResponse is the OneSignal notification create response. The errors
// field is either a plain list of error strings (whole request rejected) or
// an object carrying invalid_player_ids.
type createResponse struct {
	ID         string          `json:"id"`
	Recipients int             `json:"recipients"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

// Send issues one batched create-notification call for all tokens and maps
// invalid_player_ids in the response onto per-token invalid outcomes.
func (g *OneSignalGateway) Send(ctx context.Context, n Notification, tokens []string) ([]TokenResult, error) {
	payload := createRequest{
		AppID:            g.appID,
		IncludePlayerIDs: tokens,
		Headings:         map[string]string{"en": n.Title},
		Contents:         map[string]string{"en": n.Body},
		CollapseID:       n.CollapseKey,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+g.apiKey)

	resp, err := g.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call OneSignal: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OneSignal returned status %d: %s", resp.StatusCode, respBody)
	}

	var result createResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	invalid, batchErr := parseErrors(result.Errors)
	if batchErr != nil {
		return nil, batchErr
	}

	invalidSet := make(map[string]bool, len(invalid))
	for _, id := range invalid {
		invalidSet[id] = true
	}

	results := make([]TokenResult, 0, len(tokens))
	for _, token := range tokens {
		if invalidSet[token] {
			results = append(results, TokenResult{
				Token:  token,
				Status: StatusInvalidToken,
				Err:    fmt.Errorf("player id not registered"),
			})
			continue
		}
		results = append(results, TokenResult{Token: token, Status: StatusDelivered})
	}
	return results, nil
}

// parseErrors splits the two shapes OneSignal uses for the errors field.
func parseErrors(raw json.RawMessage) (invalid []string, batchErr error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var structured struct {
		InvalidPlayerIDs []string `json:"invalid_player_ids"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		return structured.InvalidPlayerIDs, nil
	}

	var messages []string
	if err := json.Unmarshal(raw, &messages); err == nil && len(messages) > 0 {
		return nil, fmt.Errorf("OneSignal rejected the batch: %s", messages[0])
	}
	return nil, fmt.Errorf("OneSignal returned unrecognized errors: %s", raw)
}
