// Package push notifies customers about their orders with Web Push.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Service sends web push notifications signed with VAPID keys.
type Service struct {
	publicKey  string
	privateKey string
	subscriber string
	store      *store.PushStore
	logger     *slog.Logger
}

func NewService(publicKey, privateKey string, pushStore *store.PushStore, logger *slog.Logger) *Service {
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: "orders@smartkitchen.app",
		store:      pushStore,
		logger:     logger.With("component", "push"),
	}
}

// Configured reports whether VAPID keys are set.
func (s *Service) Configured() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send sends a push notification to a subscription.
func (s *Service) Send(ctx context.Context, sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             3600,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// NotifyOrder tells the order's customer about its new status on every
// subscribed device. Expired subscriptions are deleted.
func (s *Service) NotifyOrder(ctx context.Context, o *model.Order) {
	if !s.Configured() {
		return
	}
	subs, err := s.store.ListByUser(o.UserID)
	if err != nil {
		s.logger.Error("list subscriptions", "user_id", o.UserID, "error", err)
		return
	}

	payload := OrderPayload(o)
	for i := range subs {
		sub := &subs[i]
		err := s.Send(ctx, sub, payload)
		switch {
		case errors.Is(err, ErrExpired):
			if err := s.store.DeleteByEndpoint(sub.Endpoint); err != nil {
				s.logger.Error("delete expired subscription", "subscription_id", sub.ID, "error", err)
			}
		case err != nil:
			s.logger.Warn("send order notification", "order_id", o.ID, "subscription_id", sub.ID, "error", err)
		}
	}
}

// OrderPayload describes an order's status for a notification.
func OrderPayload(o *model.Order) Payload {
	return Payload{
		Title: fmt.Sprintf("Order #%d", o.ID),
		Body:  statusMessage(o.Status),
		URL:   fmt.Sprintf("/orders/%d", o.ID),
		Tag:   fmt.Sprintf("order-%d", o.ID),
	}
}

func statusMessage(s model.OrderStatus) string {
	switch s {
	case model.StatusPlaced:
		return "We received your order"
	case model.StatusConfirmed:
		return "The restaurant confirmed your order"
	case model.StatusPreparing:
		return "Your order is being prepared"
	case model.StatusReady:
		return "Your order is ready for pickup"
	case model.StatusAssigned:
		return "A delivery partner has been assigned"
	case model.StatusOnTheWay:
		return "Your order is on the way"
	case model.StatusDelivered:
		return "Your order was delivered. Enjoy!"
	case model.StatusCancelled:
		return "Your order was cancelled"
	}
	return "Your order was updated"
}

// GenerateVAPIDKeys returns a new base64url VAPID key pair.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate VAPID keys: %w", err)
	}
	return publicKey, privateKey, nil
}
