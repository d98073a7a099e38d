package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/repository"
)

// SubscriptionService maintains list membership. Subscribe is an
// idempotent upsert; subscribe -> unsubscribe -> subscribe always leaves
// exactly one row for the pair, active.
type SubscriptionService struct {
	Subscriptions repository.SubscriptionRepositoryInterface
	Lists         repository.ListRepositoryInterface
	Members       repository.MemberRepositoryInterface
	Log           *zap.Logger
}

func (s *SubscriptionService) Subscribe(associationID, listID, memberID int) error {
	if _, err := s.Lists.GetForAssociation(associationID, listID); err != nil {
		return err
	}
	// Both ends of the pair must live in the caller's association; a
	// foreign member id answers not-found, the same as an unknown one.
	m, err := s.Members.Get(memberID)
	if err != nil {
		return err
	}
	if m.AssociationID != associationID {
		return apperr.NotFound("member %d not found", memberID)
	}
	return s.Subscriptions.Upsert(listID, memberID, time.Now())
}

func (s *SubscriptionService) Unsubscribe(associationID, listID, memberID int) error {
	if _, err := s.Lists.GetForAssociation(associationID, listID); err != nil {
		return err
	}
	return s.Subscriptions.Deactivate(listID, memberID, time.Now())
}

// AutoSubscribeOnMemberCreate subscribes a newly created member to every
// active auto-subscribe list of their association. Called synchronously
// from member creation; strictly best-effort, a failure here is logged
// and never rolls back the member.
func (s *SubscriptionService) AutoSubscribeOnMemberCreate(m *model.Member) {
	lists, err := s.Lists.AutoSubscribeLists(m.AssociationID)
	if err != nil {
		s.Log.Warn("auto-subscribe lookup failed",
			zap.Int("member_id", m.ID),
			zap.Error(err),
		)
		return
	}

	for _, list := range lists {
		if err := s.Subscriptions.Upsert(list.ID, m.ID, time.Now()); err != nil {
			s.Log.Warn("auto-subscribe failed",
				zap.Int("member_id", m.ID),
				zap.Int("list_id", list.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *SubscriptionService) Subscribers(associationID, listID int) ([]model.ListSubscriber, error) {
	if _, err := s.Lists.GetForAssociation(associationID, listID); err != nil {
		return nil, err
	}
	return s.Subscriptions.Subscribers(listID)
}
