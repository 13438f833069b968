package identity

import (
	"context"
	"errors"
)

// ErrNoSuchAccount is what a Directory returns when the subject is unknown.
var ErrNoSuchAccount = errors.New("identity: no such account")

// Directory looks up live account state for a token subject. Implemented by
// the resource store's user collection.
type Directory interface {
	IdentityByID(ctx context.Context, id string) (Identity, error)
}

// Resolver turns a bearer credential into an Identity. A well-formed token
// whose subject no longer exists resolves to ErrUnauthenticated, not a
// forbidden error: the caller has no standing at all.
type Resolver struct {
	tokens *TokenSigner
	dir    Directory
}

func NewResolver(tokens *TokenSigner, dir Directory) (*Resolver, error) {
	if tokens == nil {
		return nil, errors.New("identity: token signer is required")
	}
	if dir == nil {
		return nil, errors.New("identity: directory is required")
	}
	return &Resolver{tokens: tokens, dir: dir}, nil
}

// Resolve validates the token and loads the current account state. Pure
// lookup, no side effects.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	id, err := r.dir.IdentityByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNoSuchAccount) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, err
	}
	if !id.IsActive {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
