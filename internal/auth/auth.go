package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/coreos/go-oidc/v3/oidc"
)

const firebaseKeysURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// ErrUnauthorized is returned for missing, malformed or rejected credentials
var ErrUnauthorized = errors.New("unauthorized")

// Verifier turns a bearer credential into a verified identity
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*model.Identity, error)
}

// FirebaseVerifier checks Firebase ID tokens against Google's published signing keys
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewFirebaseVerifier builds a verifier for the given Firebase project. Keys
// are fetched lazily and cached by the remote key set.
func NewFirebaseVerifier(ctx context.Context, projectID string) *FirebaseVerifier {
	return newFirebaseVerifier(projectID, oidc.NewRemoteKeySet(ctx, firebaseKeysURL))
}

func newFirebaseVerifier(projectID string, keySet oidc.KeySet) *FirebaseVerifier {
	issuer := "https://securetoken.google.com/" + projectID
	return &FirebaseVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: projectID}),
	}
}

type firebaseClaims struct {
	Email    string `json:"email"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
}

// Verify validates signature, issuer, audience and expiry, then extracts the identity
func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*model.Identity, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var claims firebaseClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: parsing claims: %v", ErrUnauthorized, err)
	}
	if token.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}

	return &model.Identity{
		UID:      token.Subject,
		Email:    claims.Email,
		Provider: providerName(claims.Firebase.SignInProvider),
	}, nil
}

func providerName(signIn string) string {
	switch signIn {
	case "google.com":
		return model.ProviderGoogle
	case "password", "":
		return model.ProviderEmail
	default:
		return strings.TrimSuffix(signIn, ".com")
	}
}

// BearerToken extracts the credential from an Authorization header value
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer token", ErrUnauthorized)
	}
	return token, nil
}

type identityKey struct{}

// WithIdentity stores a verified identity in the context
func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity, if any
func IdentityFrom(ctx context.Context) (*model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*model.Identity)
	return id, ok && id != nil
}
