package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const invitationBody = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Welcome to %s!</h1>
  <p>You've been added to the <strong>%s</strong> team.</p>
  <p>Team license key:</p>
  <p style="font-family: monospace; font-size: 18px; letter-spacing: 1px;">%s</p>
  <ol>
    <li>Download the app and open <strong>Settings &rarr; License</strong></li>
    <li>Enter the team license key above</li>
    <li>Use your email (%s) when activating</li>
  </ol>
</div>`

// sendInvitation delivers the invite email. Delivery is best-effort:
// membership was already committed, so a send failure is logged and
// swallowed, never returned to the caller.
func (s *Service) sendInvitation(ctx context.Context, teamName, licenseKey, memberEmail string) {
	subject := fmt.Sprintf("You've been added to %s", teamName)
	body := fmt.Sprintf(invitationBody, teamName, teamName, licenseKey, memberEmail)
	if err := s.email.Send(ctx, []string{memberEmail}, subject, body); err != nil {
		s.log.Warn("failed to send invitation email",
			zap.String("team", teamName),
			zap.Error(err),
		)
	}
}
