package emailsvc

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

const suspensionTemplate = "owner_suspended"

// SuspensionNotifier emails owners when their account gets suspended.
type SuspensionNotifier struct {
	owners catalog.Repository
	mailer core.EmailService
}

var _ review.Notifier = (*SuspensionNotifier)(nil)

func NewSuspensionNotifier(owners catalog.Repository, mailer core.EmailService) *SuspensionNotifier {
	return &SuspensionNotifier{owners: owners, mailer: mailer}
}

func (n *SuspensionNotifier) NotifySuspension(ctx context.Context, ownerID string, count int) error {
	owner, err := n.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "finding suspended owner")
	}
	n.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: owner.Name, Address: owner.ID}},
		Subject:      "Your publisher account has been suspended",
		TemplateName: suspensionTemplate,
		TemplateData: map[string]interface{}{
			"Name":    owner.Name,
			"OwnerID": owner.ID,
			"Count":   count,
		},
	})
	return nil
}
