package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/service"
)

func newSubscriptionService() (*service.SubscriptionService, *fakeSubscriptionRepo, *fakeListRepo) {
	subs := newFakeSubscriptionRepo()
	lists := newFakeListRepo()
	members := &fakeMemberRepo{
		members: map[int]model.Member{
			10: {ID: 10, AssociationID: 1, FirstName: "Ann", LastName: "Ade", Email: "ann@example.org", Status: model.MemberStatusActive},
			20: {ID: 20, AssociationID: 2, FirstName: "Zoe", LastName: "Zed", Email: "zoe@example.org", Status: model.MemberStatusActive},
		},
		assoc: "Rivertown Makers",
	}
	svc := &service.SubscriptionService{
		Subscriptions: subs,
		Lists:         lists,
		Members:       members,
		Log:           zap.NewNop(),
	}
	return svc, subs, lists
}

func TestSubscribeUnsubscribeSubscribeIsIdempotent(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Newsletter", Status: "active"})

	require.NoError(t, svc.Subscribe(1, 1, 10))
	require.NoError(t, svc.Unsubscribe(1, 1, 10))
	require.NoError(t, svc.Subscribe(1, 1, 10))

	// Exactly one row ever exists for the pair, and it ends active.
	require.Len(t, subs.rows, 1)
	row := subs.rows[pairKey{1, 10}]
	assert.True(t, row.IsActive)
	assert.Nil(t, row.UnsubscribedAt)
}

func TestUnsubscribeWithoutSubscriptionIsNoop(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Newsletter", Status: "active"})

	require.NoError(t, svc.Unsubscribe(1, 1, 99))
	assert.Empty(t, subs.rows)
}

func TestSubscribeUnknownList(t *testing.T) {
	svc, _, _ := newSubscriptionService()

	err := svc.Subscribe(1, 404, 10)
	assert.Error(t, err)
}

func TestSubscribeListOfOtherAssociation(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 2, Name: "Other tenant", Status: "active"})

	err := svc.Subscribe(1, 1, 10)
	assert.Error(t, err)
	assert.Empty(t, subs.rows)
}

func TestSubscribeMemberOfOtherAssociation(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Newsletter", Status: "active"})

	// Member 20 exists but belongs to association 2; caller 1 must not
	// be able to attach it to its own list.
	err := svc.Subscribe(1, 1, 20)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, subs.rows)
}

func TestSubscribeUnknownMember(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Newsletter", Status: "active"})

	err := svc.Subscribe(1, 1, 404)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, subs.rows)
}

func TestAutoSubscribeOnMemberCreate(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Announcements", AutoSubscribe: true, Status: "active"})
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Volunteers", AutoSubscribe: false, Status: "active"})
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Archived", AutoSubscribe: true, Status: "archived"})
	lists.Create(&model.MailingList{AssociationID: 2, Name: "Elsewhere", AutoSubscribe: true, Status: "active"})

	member := &model.Member{ID: 10, AssociationID: 1, Status: model.MemberStatusActive}
	svc.AutoSubscribeOnMemberCreate(member)

	// Only the active, flagged list in the member's own association.
	require.Len(t, subs.rows, 1)
	row := subs.rows[pairKey{1, 10}]
	require.NotNil(t, row)
	assert.True(t, row.IsActive)
}

func TestAutoSubscribeNoFlaggedLists(t *testing.T) {
	svc, subs, lists := newSubscriptionService()
	lists.Create(&model.MailingList{AssociationID: 1, Name: "Newsletter", AutoSubscribe: false, Status: "active"})

	svc.AutoSubscribeOnMemberCreate(&model.Member{ID: 10, AssociationID: 1})
	assert.Empty(t, subs.rows)
}
