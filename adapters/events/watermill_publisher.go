package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/nostrmarket/agora/ports"
)

// Topics for auth and settlement notifications.
const (
	TopicLogin      = "agora.auth.login"
	TopicLogout     = "agora.auth.logout"
	TopicSettlement = "agora.market.settled"
)

// AuthEvent is published on login and logout.
type AuthEvent struct {
	PublicKey string `json:"public_key"`
}

// SettlementEvent is published when a purchase settles.
type SettlementEvent struct {
	ListingID      string `json:"listing_id"`
	BuyerPublicKey string `json:"buyer_public_key"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, publicKey string) error {
	return p.publish(TopicLogin, AuthEvent{PublicKey: publicKey})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, publicKey string) error {
	return p.publish(TopicLogout, AuthEvent{PublicKey: publicKey})
}

// PublishSettlement publishes a settlement event.
func (p *WatermillPublisher) PublishSettlement(ctx context.Context, listingID, buyerPublicKey string) error {
	return p.publish(TopicSettlement, SettlementEvent{
		ListingID:      listingID,
		BuyerPublicKey: buyerPublicKey,
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
