package service

import (
	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/repository"
)

// RecipientResolver computes the eligible recipient set for a campaign:
// the list's active subscribers when the campaign references one, or every
// active member of the association otherwise.
type RecipientResolver struct {
	Subscriptions repository.SubscriptionRepositoryInterface
	Members       repository.MemberRepositoryInterface
	Lists         repository.ListRepositoryInterface
}

func (r *RecipientResolver) Resolve(c *model.Campaign) ([]model.Recipient, error) {
	var (
		recipients []model.Recipient
		err        error
	)

	if c.ListID != nil {
		// The list must belong to the campaign's association; a foreign
		// list answers not-found, never another tenant's subscribers.
		if _, err := r.Lists.GetForAssociation(c.AssociationID, *c.ListID); err != nil {
			return nil, err
		}
		recipients, err = r.Subscriptions.ActiveRecipients(*c.ListID)
	} else {
		recipients, err = r.Members.ActiveRecipients(c.AssociationID)
	}
	if err != nil {
		return nil, err
	}

	recipients = dedupeByMember(recipients)
	if len(recipients) == 0 {
		return nil, apperr.ErrNoRecipients
	}
	return recipients, nil
}

func dedupeByMember(in []model.Recipient) []model.Recipient {
	seen := make(map[int]struct{}, len(in))
	out := in[:0]
	for _, r := range in {
		if _, ok := seen[r.MemberID]; ok {
			continue
		}
		seen[r.MemberID] = struct{}{}
		out = append(out, r)
	}
	return out
}
