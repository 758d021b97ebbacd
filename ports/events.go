package ports

import "context"

// EventPublisher notifies other components about auth and settlement
// outcomes. Publishing is best effort; callers log failures and move on.
type EventPublisher interface {
	PublishLogin(ctx context.Context, publicKey string) error
	PublishLogout(ctx context.Context, publicKey string) error
	PublishSettlement(ctx context.Context, listingID, buyerPublicKey string) error
}
