package auth

import (
	"context"
	"errors"
)

const (
	// LocalDevAPIKey is the hardcoded API key for local development only
	LocalDevAPIKey = "sk_local_meetbrief_dev_key"
)

// MockAuthorizer provides a simple authorizer for local development.
// It only recognizes the hardcoded LocalDevAPIKey and resolves it to a fixed
// demo actor, reproducing the development auth bypass behind the Authorizer
// seam so a real identity provider can replace it without touching callers.
type MockAuthorizer struct{}

// NewMockAuthorizer creates a new MockAuthorizer for local development
func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

// Authorize validates the hardcoded API key and resolves the demo actor.
func (m *MockAuthorizer) Authorize(ctx context.Context, apiKey, operation, resource string) (*ActorInfo, error) {
	if apiKey != LocalDevAPIKey {
		return nil, errors.New("invalid API key for local development")
	}

	return &ActorInfo{
		ActorID:     "meetbrief-dev",
		DisplayName: "Demo User",
		Email:       "demo@example.com",
		KeyType:     "admin",
		KeyName:     "Local Development Key",
	}, nil
}
