package interfaces

import "context"

// Authenticator turns a bearer credential into a verified identity. Session
// management lives outside this module; callers only consume the result.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (Identity, error)
}

// Identity is the verified caller attached to upload requests.
type Identity struct {
	Subject string
	Name    string
	Email   string
	Claims  map[string]any
}
