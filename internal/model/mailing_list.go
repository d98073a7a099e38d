package model

import "time"

type MailingList struct {
	ID            int        `db:"id" json:"id"`
	AssociationID int        `db:"association_id" json:"association_id"`
	Name          string     `db:"name" json:"name"`
	ListType      string     `db:"list_type" json:"list_type"`
	AutoSubscribe bool       `db:"auto_subscribe" json:"auto_subscribe"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Subscription links a member to a mailing list. Exactly one row ever
// exists per (list_id, member_id); subscribe/unsubscribe toggle the flags
// and timestamps on that row instead of inserting duplicates.
type Subscription struct {
	ID             int        `db:"id" json:"id"`
	ListID         int        `db:"list_id" json:"list_id"`
	MemberID       int        `db:"member_id" json:"member_id"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	SubscribedAt   time.Time  `db:"subscribed_at" json:"subscribed_at"`
	UnsubscribedAt *time.Time `db:"unsubscribed_at" json:"unsubscribed_at,omitempty"`
}

// ListSubscriber is the row shape for the subscriber listing and CSV export.
type ListSubscriber struct {
	MemberID     int       `db:"member_id" json:"member_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	SubscribedAt time.Time `db:"subscribed_at" json:"subscribed_at"`
}
