package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assohub/assohub-backend/internal/model"
)

type LedgerRepositoryInterface interface {
	Insert(e *model.DeliveryLedgerEntry) error

	// DispatchedStatuses returns member id -> ledger status for every row
	// already written for the campaign. A resumed dispatch uses this to
	// skip recipients that were already attempted.
	DispatchedStatuses(campaignID int) (map[int]model.DeliveryStatus, error)

	GetByProviderMessageID(messageID string) (*model.DeliveryLedgerEntry, error)
	SetDelivered(id int, at time.Time) error
	SetOpened(id int, at time.Time) error
	SetClicked(id int, at time.Time) error
	SetBounced(id int, reason string, at time.Time) error

	ListByCampaign(campaignID int) ([]model.DeliveryLedgerEntry, error)
	Counters(campaignID int) (model.CampaignCounters, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type LedgerRepository struct {
	DB *sqlx.DB
}

func (r *LedgerRepository) Insert(e *model.DeliveryLedgerEntry) error {
	e.CreatedAt = time.Now()
	query := `
		INSERT INTO delivery_ledger
			(campaign_id, member_id, recipient_email, status, provider_message_id,
			 delivered_at, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRow(query,
		e.CampaignID, e.MemberID, e.RecipientEmail, e.Status,
		e.ProviderMessageID, e.DeliveredAt, e.ErrorMessage, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *LedgerRepository) DispatchedStatuses(campaignID int) (map[int]model.DeliveryStatus, error) {
	rows, err := r.DB.Query(
		`SELECT member_id, status FROM delivery_ledger WHERE campaign_id=$1 AND member_id IS NOT NULL`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[int]model.DeliveryStatus{}
	for rows.Next() {
		var memberID int
		var status model.DeliveryStatus
		if err := rows.Scan(&memberID, &status); err != nil {
			return nil, err
		}
		seen[memberID] = status
	}
	return seen, rows.Err()
}

func (r *LedgerRepository) GetByProviderMessageID(messageID string) (*model.DeliveryLedgerEntry, error) {
	var e model.DeliveryLedgerEntry
	query := `
		SELECT id, campaign_id, member_id, recipient_email, status, provider_message_id,
		       delivered_at, opened_at, clicked_at, bounced_at, error_message, created_at
		FROM delivery_ledger
		WHERE provider_message_id=$1
	`
	if err := r.DB.Get(&e, query, messageID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *LedgerRepository) SetDelivered(id int, at time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE delivery_ledger SET status=$1, delivered_at=$2 WHERE id=$3`,
		model.DeliveryStatusDelivered, at, id,
	)
	return err
}

func (r *LedgerRepository) SetOpened(id int, at time.Time) error {
	_, err := r.DB.Exec(`UPDATE delivery_ledger SET opened_at=$1 WHERE id=$2`, at, id)
	return err
}

func (r *LedgerRepository) SetClicked(id int, at time.Time) error {
	_, err := r.DB.Exec(`UPDATE delivery_ledger SET clicked_at=$1 WHERE id=$2`, at, id)
	return err
}

func (r *LedgerRepository) SetBounced(id int, reason string, at time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE delivery_ledger SET status=$1, bounced_at=$2, error_message=$3 WHERE id=$4`,
		model.DeliveryStatusBounced, at, reason, id,
	)
	return err
}

func (r *LedgerRepository) ListByCampaign(campaignID int) ([]model.DeliveryLedgerEntry, error) {
	entries := []model.DeliveryLedgerEntry{}
	query := `
		SELECT id, campaign_id, member_id, recipient_email, status, provider_message_id,
		       delivered_at, opened_at, clicked_at, bounced_at, error_message, created_at
		FROM delivery_ledger
		WHERE campaign_id=$1
		ORDER BY id
	`
	if err := r.DB.Select(&entries, query, campaignID); err != nil {
		return nil, err
	}
	return entries, nil
}

// Counters rolls up the ledger for one campaign. The ledger is the single
// source of truth for campaign counters; nothing else writes them.
func (r *LedgerRepository) Counters(campaignID int) (model.CampaignCounters, error) {
	var c model.CampaignCounters
	query := `
		SELECT
			COUNT(*)                                            AS total,
			COUNT(*) FILTER (WHERE status = 'delivered')        AS delivered,
			COUNT(*) FILTER (WHERE status = 'failed')           AS failed,
			COUNT(*) FILTER (WHERE status = 'bounced')          AS bounced,
			COUNT(*) FILTER (WHERE opened_at IS NOT NULL)       AS opened,
			COUNT(*) FILTER (WHERE clicked_at IS NOT NULL)      AS clicked
		FROM delivery_ledger
		WHERE campaign_id=$1
	`
	err := r.DB.Get(&c, query, campaignID)
	return c, err
}

func (r *LedgerRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM delivery_ledger WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ LedgerRepositoryInterface = (*LedgerRepository)(nil)
