package email

import (
	"context"
)

// Service delivers rendered messages. Success means the relay accepted the
// message; there is no delivery confirmation beyond that.
type Service interface {
	Send(ctx context.Context, to string, subject string, html string) error
}
