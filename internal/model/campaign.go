package model

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft   CampaignStatus = "draft"
	CampaignStatusSending CampaignStatus = "sending"
	CampaignStatusSent    CampaignStatus = "sent"
	CampaignStatusFailed  CampaignStatus = "failed"
)

// Campaign is one outbound broadcast. Status only moves forward:
// draft -> sending -> sent|failed. Delivered/opened/clicked/bounced
// counters are not stored here; they are aggregated from the delivery
// ledger on read.
type Campaign struct {
	ID             int            `db:"id" json:"id"`
	AssociationID  int            `db:"association_id" json:"association_id"`
	ListID         *int           `db:"list_id" json:"list_id,omitempty"`
	SenderID       int            `db:"sender_id" json:"sender_id"`
	Subject        string         `db:"subject" json:"subject"`
	BodyTemplate   string         `db:"body_template" json:"body_template"`
	TemplateName   *string        `db:"template_name" json:"template_name,omitempty"`
	Status         CampaignStatus `db:"status" json:"status"`
	RecipientCount int            `db:"recipient_count" json:"recipient_count"`
	ScheduledAt    *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	SentAt         *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}
