package submission

import "context"

// Receipt confirms an accepted registration.
type Receipt struct {
	ConfirmationID string `json:"confirmationId"`
}

// Submitter transmits a payload. Implementations may block; they must treat a
// repeated idempotency key as the same registration and return the original
// receipt instead of registering twice. Failures should be returned as
// *FailedError so reasons reach the user.
type Submitter interface {
	Submit(ctx context.Context, payload Payload, idempotencyKey string) (Receipt, error)
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, payload Payload, idempotencyKey string) (Receipt, error)

// Submit delegates to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, payload Payload, idempotencyKey string) (Receipt, error) {
	return fn(ctx, payload, idempotencyKey)
}
