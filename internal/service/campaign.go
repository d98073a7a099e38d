package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/metrics"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/queue"
	"github.com/assohub/assohub-backend/internal/repository"
)

// CampaignService owns the campaign lifecycle: draft CRUD, the
// draft -> sending -> sent|failed state machine, and the ledger-backed
// stats rollup.
type CampaignService struct {
	Campaigns  repository.CampaignRepositoryInterface
	Ledger     repository.LedgerRepositoryInterface
	Lists      repository.ListRepositoryInterface
	Resolver   *RecipientResolver
	Publisher  queue.Publisher
	Dispatcher *Dispatcher
	Log        *zap.Logger
}

type CreateCampaignInput struct {
	ListID       *int    `json:"list_id"`
	SenderID     int     `json:"sender_id"`
	Subject      string  `json:"subject"`
	BodyTemplate string  `json:"body_template"`
	TemplateName *string `json:"template_name"`
	ScheduledAt  *string `json:"scheduled_at"`
}

func (s *CampaignService) Create(associationID int, in CreateCampaignInput) (*model.Campaign, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, apperr.Validation("subject is required")
	}
	if strings.TrimSpace(in.BodyTemplate) == "" {
		return nil, apperr.Validation("body_template is required")
	}
	if in.ListID != nil {
		if _, err := s.Lists.GetForAssociation(associationID, *in.ListID); err != nil {
			return nil, err
		}
	}

	c := &model.Campaign{
		AssociationID: associationID,
		ListID:        in.ListID,
		SenderID:      in.SenderID,
		Subject:       in.Subject,
		BodyTemplate:  in.BodyTemplate,
		TemplateName:  in.TemplateName,
		Status:        model.CampaignStatusDraft,
	}

	if in.ScheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *in.ScheduledAt)
		if err != nil {
			return nil, apperr.Validation("scheduled_at must be RFC3339: %v", err)
		}
		c.ScheduledAt = &t
	}

	if err := s.Campaigns.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) List(associationID, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.Campaigns.List(associationID, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": (total + pageSize - 1) / pageSize,
	}
	return campaigns, pagination, nil
}

func (s *CampaignService) Get(associationID, id int) (*model.Campaign, error) {
	return s.Campaigns.GetForAssociation(associationID, id)
}

func (s *CampaignService) Delete(associationID, id int) error {
	return s.Campaigns.DeleteDraft(associationID, id)
}

func (s *CampaignService) LedgerEntries(associationID, id int) ([]model.DeliveryLedgerEntry, error) {
	if _, err := s.Campaigns.GetForAssociation(associationID, id); err != nil {
		return nil, err
	}
	return s.Ledger.ListByCampaign(id)
}

// Send accepts a draft campaign for dispatch. Recipients are resolved
// up front so the caller gets the count; the count is frozen at this
// point, later list changes do not touch an in-flight campaign. Only a
// draft is accepted; every non-draft state answers with the same
// not-found-or-already-sent signal so a duplicate send race has one
// unambiguous loser.
func (s *CampaignService) Send(associationID, id int) (int, error) {
	if s.Dispatcher == nil || !s.Dispatcher.Transport.Available() {
		return 0, apperr.Unavailable("email transport is not configured")
	}

	c, err := s.Campaigns.GetForAssociation(associationID, id)
	if err != nil {
		return 0, err
	}

	recipients, err := s.Resolver.Resolve(c)
	if err != nil {
		return 0, err
	}

	accepted, err := s.Campaigns.MarkSending(c.ID, len(recipients), time.Now())
	if err != nil {
		return 0, err
	}
	if !accepted {
		return 0, apperr.Conflict("campaign %d not found or already sent", id)
	}

	if err := s.Publisher.PublishDispatch(queue.DispatchJob{CampaignID: c.ID}); err != nil {
		// Accepted but not enqueued; the worker's stuck-campaign scan
		// will pick it up.
		s.Log.Error("failed to enqueue dispatch", zap.Int("campaign_id", c.ID), zap.Error(err))
	}

	return len(recipients), nil
}

// RunDispatch is the worker-side half of a send: re-resolve, dispatch,
// finalize. Any error escaping the run marks the campaign failed; the
// operator resends by creating a new campaign.
func (s *CampaignService) RunDispatch(ctx context.Context, campaignID int) error {
	c, err := s.Campaigns.Get(campaignID)
	if err != nil {
		return err
	}
	if c.Status != model.CampaignStatusSending {
		s.Log.Info("skipping dispatch, campaign not in sending state",
			zap.Int("campaign_id", campaignID),
			zap.String("status", string(c.Status)),
		)
		return nil
	}

	recipients, err := s.Resolver.Resolve(c)
	if err != nil {
		s.fail(campaignID, err)
		return fmt.Errorf("resolve recipients: %w", err)
	}

	result, err := s.Dispatcher.Dispatch(ctx, c, recipients, c.Subject, c.BodyTemplate, "")
	if err != nil {
		// A shutdown mid-batch is not a campaign failure: leave it in
		// `sending` so RecoverStuck resumes it, same as a hard crash.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.Log.Warn("dispatch interrupted, leaving campaign for recovery",
				zap.Int("campaign_id", campaignID),
				zap.Error(err),
			)
			return fmt.Errorf("dispatch interrupted: %w", err)
		}
		s.fail(campaignID, err)
		return fmt.Errorf("dispatch: %w", err)
	}

	if err := s.Campaigns.MarkFinished(campaignID, model.CampaignStatusSent); err != nil {
		return err
	}

	metrics.CampaignsDispatched.WithLabelValues("sent").Inc()
	s.Log.Info("campaign dispatched",
		zap.Int("campaign_id", campaignID),
		zap.Int("total", result.Total),
		zap.Int("delivered", result.Delivered),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return nil
}

func (s *CampaignService) fail(campaignID int, cause error) {
	metrics.CampaignsDispatched.WithLabelValues("failed").Inc()
	s.Log.Error("campaign dispatch failed", zap.Int("campaign_id", campaignID), zap.Error(cause))
	if err := s.Campaigns.MarkFinished(campaignID, model.CampaignStatusFailed); err != nil {
		s.Log.Error("failed to mark campaign failed", zap.Int("campaign_id", campaignID), zap.Error(err))
	}
}

type CampaignStats struct {
	CampaignID     int                    `json:"campaign_id"`
	Status         model.CampaignStatus   `json:"status"`
	RecipientCount int                    `json:"recipient_count"`
	Counters       model.CampaignCounters `json:"counters"`
	Rates          RateSet                `json:"rates"`
}

// Stats aggregates counters from the ledger on demand. The ledger is the
// only bookkeeping path; the campaign row carries nothing but status and
// the frozen recipient count.
func (s *CampaignService) Stats(associationID, id int) (*CampaignStats, error) {
	c, err := s.Campaigns.GetForAssociation(associationID, id)
	if err != nil {
		return nil, err
	}

	counters, err := s.Ledger.Counters(id)
	if err != nil {
		return nil, err
	}

	return &CampaignStats{
		CampaignID:     c.ID,
		Status:         c.Status,
		RecipientCount: c.RecipientCount,
		Counters:       counters,
		Rates:          Rates(counters.Delivered, counters.Total, counters.Opened, counters.Clicked),
	}, nil
}

// RecoverStuck re-enqueues campaigns that have sat in `sending` past the
// timeout, typically after a worker crash mid-batch. The ledger key makes
// the re-run skip recipients already attempted.
func (s *CampaignService) RecoverStuck(timeout time.Duration) error {
	ids, err := s.Campaigns.StuckSending(time.Now().Add(-timeout))
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.Log.Warn("re-enqueueing stuck campaign", zap.Int("campaign_id", id))
		if err := s.Publisher.PublishDispatch(queue.DispatchJob{CampaignID: id}); err != nil {
			return err
		}
	}
	return nil
}
