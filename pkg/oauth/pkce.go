package oauth

import (
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// GeneratePKCE creates a fresh verifier and its S256 challenge.
func GeneratePKCE() *PKCEChallenge {
	verifier := oauth2.GenerateVerifier()
	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       oauth2.S256ChallengeFromVerifier(verifier),
		CodeChallengeMethod: "S256",
	}
}

// GenerateState returns an unguessable value for the authorize request's
// state parameter, echoed back on the callback.
func GenerateState() string {
	return uuid.NewString()
}
