package service

import "context"

// Mailer delivers password reset links. Implementations may deliver
// synchronously or hand the message to a queue.
type Mailer interface {
	Deliver(ctx context.Context, email, resetLink string) error
}

// Throttle limits how often a reset can be requested for one address.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}
