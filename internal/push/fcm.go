package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

// FCMGateway delivers notifications through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway initializes the Firebase app from a service account file and
// builds the messaging client. Fails at construction, not on first send.
func NewFCMGateway(ctx context.Context, credentialsPath string) (*FCMGateway, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMGateway{client: client}, nil
}

// Name identifies the backend in logs
func (g *FCMGateway) Name() string { return "fcm" }

// Send delivers the notification to each token individually so that one
// rejected token cannot affect the others.
func (g *FCMGateway) Send(ctx context.Context, n Notification, tokens []string) ([]TokenResult, error) {
	results := make([]TokenResult, 0, len(tokens))

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Android: &messaging.AndroidConfig{
				Priority:    "high",
				CollapseKey: n.CollapseKey,
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{
					"apns-collapse-id": n.CollapseKey,
				},
			},
		}

		_, err := g.client.Send(ctx, message)
		switch {
		case err == nil:
			results = append(results, TokenResult{Token: token, Status: StatusDelivered})
		case messaging.IsRegistrationTokenNotRegistered(err):
			results = append(results, TokenResult{Token: token, Status: StatusInvalidToken, Err: err})
		default:
			results = append(results, TokenResult{Token: token, Status: StatusFailed, Err: err})
		}
	}

	return results, nil
}
