package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Identity is what the admin surface needs from a verified ID token.
type Identity struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// HasClaim reports whether the custom claim is set to true.
func (i *Identity) HasClaim(claim string) bool {
	if i == nil || claim == "" {
		return false
	}
	value, ok := i.Claims[claim].(bool)
	return ok && value
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		UID:    result.UID,
		Claims: result.Claims,
	}
	if email, ok := result.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}

// SetAdmin grants or revokes the admin custom claim on a user.
func (f *FirebaseAuthClient) SetAdmin(ctx context.Context, uid, claim string, admin bool) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{claim: admin})
}
