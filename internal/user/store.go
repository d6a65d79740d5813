package user

import "context"

// Store is the user repository contract.
//
// Error Contract:
// - Reads return sentinel.ErrNotFound (possibly wrapped) when the user does
//   not exist; absence is a normal result, not a fault.
// - Infrastructure failures (connectivity, conflicts) come back wrapped with
//   context; services map them to internal errors.
//
// Create assigns the document id and stamps CreatedAt/LastLoginAt. Update
// refreshes LastLoginAt on every call; that is repository policy, not a
// caller choice.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByGoogleID(ctx context.Context, googleUserID string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id string) error
}
