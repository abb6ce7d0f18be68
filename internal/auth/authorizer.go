package auth

import (
	"context"
)

// ActorInfo contains information about an authenticated actor.
// DisplayName and Email are used as the sharer identity when a summary is
// mailed out.
type ActorInfo struct {
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	KeyType     string `json:"key_type"` // 'standard', 'admin'
	KeyName     string `json:"key_name"`
}

// Authorizer validates API keys and checks permissions in one call.
// It is the only seam through which an ownerId enters the service layer;
// swapping in a real identity provider must not change this contract.
type Authorizer interface {
	// Authorize validates the API key and checks if the actor can perform
	// the operation. Returns ActorInfo if authorized, error otherwise.
	Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error)
}
