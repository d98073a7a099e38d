package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/queue"
	"github.com/assohub/assohub-backend/internal/repository"
	"github.com/assohub/assohub-backend/internal/transport"
)

// ---------------------------------------------------------------------
// transport fake
// ---------------------------------------------------------------------

type sendOutcome struct {
	messageID string
	err       error
}

type fakeTransport struct {
	unavailable bool
	outcomes    map[string]sendOutcome // keyed by recipient email
	sent        []transport.Message
}

func (t *fakeTransport) Available() bool { return !t.unavailable }

func (t *fakeTransport) Send(_ context.Context, msg transport.Message) (string, error) {
	t.sent = append(t.sent, msg)
	out, ok := t.outcomes[msg.To]
	if !ok {
		return "msg-" + msg.To, nil
	}
	return out.messageID, out.err
}

// ---------------------------------------------------------------------
// ledger fake
// ---------------------------------------------------------------------

type fakeLedger struct {
	entries []*model.DeliveryLedgerEntry
	nextID  int
}

func (l *fakeLedger) Insert(e *model.DeliveryLedgerEntry) error {
	l.nextID++
	e.ID = l.nextID
	e.CreatedAt = time.Now()
	clone := *e
	l.entries = append(l.entries, &clone)
	return nil
}

func (l *fakeLedger) DispatchedStatuses(campaignID int) (map[int]model.DeliveryStatus, error) {
	seen := map[int]model.DeliveryStatus{}
	for _, e := range l.entries {
		if e.CampaignID == campaignID && e.MemberID != nil {
			seen[*e.MemberID] = e.Status
		}
	}
	return seen, nil
}

func (l *fakeLedger) GetByProviderMessageID(messageID string) (*model.DeliveryLedgerEntry, error) {
	for _, e := range l.entries {
		if e.ProviderMessageID == messageID {
			return e, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) byID(id int) *model.DeliveryLedgerEntry {
	for _, e := range l.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (l *fakeLedger) SetDelivered(id int, at time.Time) error {
	e := l.byID(id)
	e.Status = model.DeliveryStatusDelivered
	e.DeliveredAt = &at
	return nil
}

func (l *fakeLedger) SetOpened(id int, at time.Time) error {
	l.byID(id).OpenedAt = &at
	return nil
}

func (l *fakeLedger) SetClicked(id int, at time.Time) error {
	l.byID(id).ClickedAt = &at
	return nil
}

func (l *fakeLedger) SetBounced(id int, reason string, at time.Time) error {
	e := l.byID(id)
	e.Status = model.DeliveryStatusBounced
	e.BouncedAt = &at
	e.ErrorMessage = reason
	return nil
}

func (l *fakeLedger) ListByCampaign(campaignID int) ([]model.DeliveryLedgerEntry, error) {
	out := []model.DeliveryLedgerEntry{}
	for _, e := range l.entries {
		if e.CampaignID == campaignID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (l *fakeLedger) Counters(campaignID int) (model.CampaignCounters, error) {
	var c model.CampaignCounters
	for _, e := range l.entries {
		if e.CampaignID != campaignID {
			continue
		}
		c.Total++
		switch e.Status {
		case model.DeliveryStatusDelivered:
			c.Delivered++
		case model.DeliveryStatusFailed:
			c.Failed++
		case model.DeliveryStatusBounced:
			c.Bounced++
		}
		if e.OpenedAt != nil {
			c.Opened++
		}
		if e.ClickedAt != nil {
			c.Clicked++
		}
	}
	return c, nil
}

func (l *fakeLedger) DeleteOlderThan(cutoff time.Time) (int64, error) {
	kept := l.entries[:0]
	var deleted int64
	for _, e := range l.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return deleted, nil
}

// ---------------------------------------------------------------------
// campaign repo fake
// ---------------------------------------------------------------------

type fakeCampaignRepo struct {
	campaigns map[int]*model.Campaign
	nextID    int
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[int]*model.Campaign{}}
}

func (r *fakeCampaignRepo) Create(c *model.Campaign) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.campaigns[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) Get(id int) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperr.NotFound("campaign %d not found", id)
	}
	return c, nil
}

func (r *fakeCampaignRepo) GetForAssociation(associationID, id int) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok || c.AssociationID != associationID {
		return nil, apperr.NotFound("campaign %d not found", id)
	}
	return c, nil
}

func (r *fakeCampaignRepo) List(associationID, offset, limit int, status string) ([]model.Campaign, int, error) {
	out := []model.Campaign{}
	for _, c := range r.campaigns {
		if c.AssociationID == associationID && (status == "" || string(c.Status) == status) {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (r *fakeCampaignRepo) MarkSending(id, recipientCount int, at time.Time) (bool, error) {
	c, ok := r.campaigns[id]
	if !ok || c.Status != model.CampaignStatusDraft {
		return false, nil
	}
	c.Status = model.CampaignStatusSending
	c.SentAt = &at
	c.RecipientCount = recipientCount
	return true, nil
}

func (r *fakeCampaignRepo) MarkFinished(id int, status model.CampaignStatus) error {
	c, ok := r.campaigns[id]
	if !ok {
		return fmt.Errorf("campaign %d missing", id)
	}
	if c.Status == model.CampaignStatusSending {
		c.Status = status
	}
	return nil
}

func (r *fakeCampaignRepo) DeleteDraft(associationID, id int) error {
	c, ok := r.campaigns[id]
	if !ok || c.AssociationID != associationID || c.Status != model.CampaignStatusDraft {
		return apperr.NotFound("campaign %d not found or not a draft", id)
	}
	delete(r.campaigns, id)
	return nil
}

func (r *fakeCampaignRepo) StuckSending(olderThan time.Time) ([]int, error) {
	ids := []int{}
	for _, c := range r.campaigns {
		if c.Status == model.CampaignStatusSending && c.SentAt != nil && c.SentAt.Before(olderThan) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------
// subscription repo fake
// ---------------------------------------------------------------------

type pairKey struct{ listID, memberID int }

type fakeSubscriptionRepo struct {
	rows    map[pairKey]*model.Subscription
	members map[int]model.Member // member id -> member, for recipient filtering
	assoc   string
	nextID  int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		rows:    map[pairKey]*model.Subscription{},
		members: map[int]model.Member{},
		assoc:   "Rivertown Makers",
	}
}

func (r *fakeSubscriptionRepo) Upsert(listID, memberID int, at time.Time) error {
	key := pairKey{listID, memberID}
	if row, ok := r.rows[key]; ok {
		row.IsActive = true
		row.SubscribedAt = at
		row.UnsubscribedAt = nil
		return nil
	}
	r.nextID++
	r.rows[key] = &model.Subscription{
		ID:           r.nextID,
		ListID:       listID,
		MemberID:     memberID,
		IsActive:     true,
		SubscribedAt: at,
	}
	return nil
}

func (r *fakeSubscriptionRepo) Deactivate(listID, memberID int, at time.Time) error {
	if row, ok := r.rows[pairKey{listID, memberID}]; ok && row.IsActive {
		row.IsActive = false
		row.UnsubscribedAt = &at
	}
	return nil
}

func (r *fakeSubscriptionRepo) ActiveRecipients(listID int) ([]model.Recipient, error) {
	out := []model.Recipient{}
	for key, row := range r.rows {
		if key.listID != listID || !row.IsActive {
			continue
		}
		m, ok := r.members[key.memberID]
		if !ok || m.Status != model.MemberStatusActive {
			continue
		}
		out = append(out, model.Recipient{
			MemberID:        m.ID,
			Name:            m.FirstName + " " + m.LastName,
			Email:           m.Email,
			AssociationName: r.assoc,
		})
	}
	// Deterministic order, mirroring the SQL ORDER BY m.id.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].MemberID < out[i].MemberID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Subscribers(listID int) ([]model.ListSubscriber, error) {
	out := []model.ListSubscriber{}
	for key, row := range r.rows {
		if key.listID != listID {
			continue
		}
		m := r.members[key.memberID]
		out = append(out, model.ListSubscriber{
			MemberID:     key.memberID,
			FirstName:    m.FirstName,
			LastName:     m.LastName,
			Email:        m.Email,
			IsActive:     row.IsActive,
			SubscribedAt: row.SubscribedAt,
		})
	}
	return out, nil
}

// ---------------------------------------------------------------------
// list repo fake
// ---------------------------------------------------------------------

type fakeListRepo struct {
	lists  map[int]*model.MailingList
	nextID int
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: map[int]*model.MailingList{}}
}

func (r *fakeListRepo) Create(l *model.MailingList) error {
	for _, existing := range r.lists {
		if existing.AssociationID == l.AssociationID && existing.Name == l.Name {
			return apperr.Conflict("a list named %q already exists", l.Name)
		}
	}
	r.nextID++
	l.ID = r.nextID
	r.lists[l.ID] = l
	return nil
}

func (r *fakeListRepo) GetForAssociation(associationID, id int) (*model.MailingList, error) {
	l, ok := r.lists[id]
	if !ok || l.AssociationID != associationID {
		return nil, apperr.NotFound("mailing list %d not found", id)
	}
	return l, nil
}

func (r *fakeListRepo) List(associationID int) ([]model.MailingList, error) {
	out := []model.MailingList{}
	for _, l := range r.lists {
		if l.AssociationID == associationID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListRepo) Update(l *model.MailingList) error {
	if _, ok := r.lists[l.ID]; !ok {
		return apperr.NotFound("mailing list %d not found", l.ID)
	}
	r.lists[l.ID] = l
	return nil
}

func (r *fakeListRepo) Delete(associationID, id int) error {
	delete(r.lists, id)
	return nil
}

func (r *fakeListRepo) AutoSubscribeLists(associationID int) ([]model.MailingList, error) {
	out := []model.MailingList{}
	for _, l := range r.lists {
		if l.AssociationID == associationID && l.AutoSubscribe && l.Status == "active" {
			out = append(out, *l)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------
// member repo fake
// ---------------------------------------------------------------------

type fakeMemberRepo struct {
	members map[int]model.Member
	assoc   string
	nextID  int
}

func (r *fakeMemberRepo) Create(m *model.Member) error {
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.members[m.ID] = *m
	return nil
}

func (r *fakeMemberRepo) Get(id int) (*model.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, apperr.NotFound("member %d not found", id)
	}
	return &m, nil
}

func (r *fakeMemberRepo) ActiveRecipients(associationID int) ([]model.Recipient, error) {
	out := []model.Recipient{}
	for _, m := range r.members {
		if m.AssociationID == associationID && m.Status == model.MemberStatusActive {
			out = append(out, model.Recipient{
				MemberID:        m.ID,
				Name:            m.FirstName + " " + m.LastName,
				Email:           m.Email,
				AssociationName: r.assoc,
			})
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------
// publisher fake
// ---------------------------------------------------------------------

type fakePublisher struct {
	jobs []queue.DispatchJob
	err  error
}

func (p *fakePublisher) PublishDispatch(job queue.DispatchJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

// Interface guards.
var (
	_ transport.Transport                        = (*fakeTransport)(nil)
	_ repository.LedgerRepositoryInterface       = (*fakeLedger)(nil)
	_ repository.CampaignRepositoryInterface     = (*fakeCampaignRepo)(nil)
	_ repository.SubscriptionRepositoryInterface = (*fakeSubscriptionRepo)(nil)
	_ repository.ListRepositoryInterface         = (*fakeListRepo)(nil)
	_ repository.MemberRepositoryInterface       = (*fakeMemberRepo)(nil)
	_ queue.Publisher                            = (*fakePublisher)(nil)
)
