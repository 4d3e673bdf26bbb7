// Package push abstracts the delivery of batched push notifications to a
// user's registered device tokens. Backends report an independent outcome per
// token; one dead token never fails the rest of the batch.
package push

import "context"

// DeliveryStatus classifies the outcome for a single destination token.
type DeliveryStatus int

const (
	// StatusDelivered means the backend accepted the message for the token.
	StatusDelivered DeliveryStatus = iota
	// StatusInvalidToken means the token will never work again (uninstalled
	// app, blocked bot). The caller should drop it from storage.
	StatusInvalidToken
	// StatusFailed is any other failure; the token is kept and no redelivery
	// is attempted this cycle.
	StatusFailed
)

// Notification is the composed message sent to every token in one batch.
// CollapseKey groups notifications so repeats to the same user collapse on
// the device.
type Notification struct {
	Title       string
	Body        string
	CollapseKey string
}

// TokenResult is the per-token outcome of a batched send.
type TokenResult struct {
	Token  string
	Status DeliveryStatus
	Err    error
}

// Gateway is implemented by every push delivery backend.
type Gateway interface {
	// Name identifies the backend in logs.
	Name() string
	// Send delivers one notification to all tokens and returns one result per
	// token, in token order. The error return is reserved for failures that
	// prevented the batch from being attempted at all.
	Send(ctx context.Context, n Notification, tokens []string) ([]TokenResult, error)
}

// InvalidTokens extracts the tokens reported as permanently invalid.
func InvalidTokens(results []TokenResult) []string {
	var invalid []string
	for _, res := range results {
		if res.Status == StatusInvalidToken {
			invalid = append(invalid, res.Token)
		}
	}
	return invalid
}
