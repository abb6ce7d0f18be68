package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ExtractAPIKey pulls the API key out of the Authorization header.
// The header must use the "Bearer <api_key>" scheme.
func ExtractAPIKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	scheme, key, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || key == "" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <api_key>'")
	}
	return key, nil
}
