package email

import "context"

// Provider sends transactional mail. Sends are best-effort; callers must
// never let a delivery failure roll back the operation that triggered it.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
