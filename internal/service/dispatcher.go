package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/assohub/assohub-backend/internal/metrics"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/repository"
	"github.com/assohub/assohub-backend/internal/transport"
)

const DefaultBatchSize = 50

type DispatchResult struct {
	Total     int
	Delivered int
	Failed    int
	Skipped   int
}

// Dispatcher sends a campaign to its resolved recipients. Recipients are
// processed strictly sequentially in resolver order, chunked into batches
// as a safety ceiling, with a pacing limiter between sends so one campaign
// stays under the provider rate limit. A failed send is recorded and the
// loop continues; one bad address never aborts a campaign.
type Dispatcher struct {
	Transport transport.Transport
	Ledger    repository.LedgerRepositoryInterface
	Limiter   *rate.Limiter
	BatchSize int
	Log       *zap.Logger
}

func NewDispatcher(t transport.Transport, ledger repository.LedgerRepositoryInterface, sendInterval time.Duration, batchSize int, log *zap.Logger) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if sendInterval <= 0 {
		sendInterval = 100 * time.Millisecond
	}
	return &Dispatcher{
		Transport: t,
		Ledger:    ledger,
		Limiter:   rate.NewLimiter(rate.Every(sendInterval), 1),
		BatchSize: batchSize,
		Log:       log,
	}
}

// Dispatch writes one ledger row per recipient attempted. Recipients that
// already have a ledger row for this campaign are skipped, which makes a
// re-enqueued campaign resume instead of double-sending; their prior
// outcome still counts toward the result.
func (d *Dispatcher) Dispatch(ctx context.Context, campaign *model.Campaign, recipients []model.Recipient, subject, htmlBody, textBody string) (DispatchResult, error) {
	result := DispatchResult{Total: len(recipients)}

	prior, err := d.Ledger.DispatchedStatuses(campaign.ID)
	if err != nil {
		return result, err
	}

	for start := 0; start < len(recipients); start += d.BatchSize {
		end := start + d.BatchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		for _, recipient := range recipients[start:end] {
			if status, ok := prior[recipient.MemberID]; ok {
				result.Skipped++
				if status == model.DeliveryStatusDelivered {
					result.Delivered++
				} else {
					result.Failed++
				}
				continue
			}

			if err := d.Limiter.Wait(ctx); err != nil {
				return result, err
			}

			d.sendOne(ctx, campaign, recipient, subject, htmlBody, textBody, &result)
		}
	}

	return result, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, campaign *model.Campaign, recipient model.Recipient, subject, htmlBody, textBody string, result *DispatchResult) {
	msg := transport.Message{
		To:      recipient.Email,
		Subject: Personalize(subject, recipient),
		HTML:    Personalize(htmlBody, recipient),
		Text:    Personalize(textBody, recipient),
	}

	memberID := recipient.MemberID
	entry := model.DeliveryLedgerEntry{
		CampaignID:     campaign.ID,
		MemberID:       &memberID,
		RecipientEmail: recipient.Email,
	}

	messageID, err := d.Transport.Send(ctx, msg)
	if err != nil {
		result.Failed++
		metrics.EmailFailures.Inc()
		d.Log.Warn("send failed",
			zap.Int("campaign_id", campaign.ID),
			zap.String("to", recipient.Email),
			zap.Error(err),
		)

		entry.Status = model.DeliveryStatusFailed
		entry.ErrorMessage = err.Error()
	} else {
		result.Delivered++
		metrics.EmailsSent.Inc()

		now := time.Now()
		entry.Status = model.DeliveryStatusDelivered
		entry.ProviderMessageID = messageID
		entry.DeliveredAt = &now
	}

	if err := d.Ledger.Insert(&entry); err != nil {
		d.Log.Error("ledger write failed",
			zap.Int("campaign_id", campaign.ID),
			zap.String("to", recipient.Email),
			zap.Error(err),
		)
	}
}
