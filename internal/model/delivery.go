package model

import "time"

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusBounced   DeliveryStatus = "bounced"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// DeliveryLedgerEntry is the per-recipient record of one send attempt.
// Exactly one row exists per (campaign_id, member_id); that key makes a
// resumed dispatch skip recipients that were already attempted. The
// member reference is a weak back-reference, members may be removed later.
type DeliveryLedgerEntry struct {
	ID                int            `db:"id" json:"id"`
	CampaignID        int            `db:"campaign_id" json:"campaign_id"`
	MemberID          *int           `db:"member_id" json:"member_id,omitempty"`
	RecipientEmail    string         `db:"recipient_email" json:"recipient_email"`
	Status            DeliveryStatus `db:"status" json:"status"`
	ProviderMessageID string         `db:"provider_message_id" json:"provider_message_id"`
	DeliveredAt       *time.Time     `db:"delivered_at" json:"delivered_at,omitempty"`
	OpenedAt          *time.Time     `db:"opened_at" json:"opened_at,omitempty"`
	ClickedAt         *time.Time     `db:"clicked_at" json:"clicked_at,omitempty"`
	BouncedAt         *time.Time     `db:"bounced_at" json:"bounced_at,omitempty"`
	ErrorMessage      string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// CampaignCounters is the ledger rollup for one campaign. Opened and
// Clicked count rows whose timestamps are set regardless of status.
type CampaignCounters struct {
	Total     int `db:"total" json:"total"`
	Delivered int `db:"delivered" json:"delivered"`
	Failed    int `db:"failed" json:"failed"`
	Bounced   int `db:"bounced" json:"bounced"`
	Opened    int `db:"opened" json:"opened"`
	Clicked   int `db:"clicked" json:"clicked"`
}
