package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/assohub/assohub-backend/internal/metrics"
	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/repository"
)

// CallbackIngestor reconciles the delivery ledger against asynchronous
// provider events. It only ever updates existing rows, keyed on the
// provider message id; an unknown id is a logged no-op so provider retry
// storms never build up. Events carry no ordering guarantee: a bounce
// landing after a delivered event overwrites status while delivered_at
// stays set.
type CallbackIngestor struct {
	Ledger repository.LedgerRepositoryInterface
	Log    *zap.Logger
}

func (i *CallbackIngestor) HandleCallback(ctx context.Context, ev model.CallbackEvent) error {
	metrics.CallbacksReceived.WithLabelValues(string(ev.Type)).Inc()

	entry, err := i.Ledger.GetByProviderMessageID(ev.MessageID)
	if err != nil {
		return err
	}
	if entry == nil {
		i.Log.Info("callback for unknown message id",
			zap.String("message_id", ev.MessageID),
			zap.String("type", string(ev.Type)),
		)
		return nil
	}

	now := time.Now()
	switch ev.Type {
	case model.CallbackDelivered:
		return i.Ledger.SetDelivered(entry.ID, now)
	case model.CallbackOpened:
		return i.Ledger.SetOpened(entry.ID, now)
	case model.CallbackClicked:
		return i.Ledger.SetClicked(entry.ID, now)
	case model.CallbackBounced:
		return i.Ledger.SetBounced(entry.ID, ev.Reason, now)
	}

	// Unreachable for events that passed ValidCallbackType at the edge.
	i.Log.Warn("unrecognized callback type", zap.String("type", string(ev.Type)))
	return nil
}
