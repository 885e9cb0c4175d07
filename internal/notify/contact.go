package notify

import (
	"context"
	"fmt"

	"github.com/sitechat/widget-ai-platform/internal/tenant"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// ContactNotifier emails a tenant's owner when a widget visitor leaves
// contact details.
type ContactNotifier struct {
	sender EmailSender
	logger *logging.Logger
}

func NewContactNotifier(sender EmailSender, logger *logging.Logger) *ContactNotifier {
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ContactNotifier{sender: sender, logger: logger}
}

// NotifyContact sends the new-lead email. Tenants without a notify address
// are skipped silently.
func (n *ContactNotifier) NotifyContact(ctx context.Context, profile tenant.Profile, name, email string) error {
	if profile.NotifyEmail == "" {
		n.logger.Info("tenant has no notify email, skipping contact notification",
			"tenant_id", profile.TenantID)
		return nil
	}
	if name == "" {
		name = "A visitor"
	}

	body := fmt.Sprintf(
		"%s left their contact details in the %s chat widget.\n\nName: %s\nEmail: %s\n",
		name, profile.DisplayName, name, email)

	msg := EmailMessage{
		To:      profile.NotifyEmail,
		ToName:  profile.DisplayName,
		Subject: fmt.Sprintf("New chat lead for %s", profile.DisplayName),
		Body:    body,
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: contact notification failed: %w", err)
	}
	return nil
}
