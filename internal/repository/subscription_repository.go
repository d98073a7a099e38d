package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
)

type SubscriptionRepositoryInterface interface {
	// Upsert is the only write path for subscribing: one atomic statement
	// with (list_id, member_id) as the conflict target, so a pair can never
	// grow a second row no matter how calls interleave.
	Upsert(listID, memberID int, at time.Time) error

	// Deactivate unsubscribes. No matching active row is a no-op, not an
	// error.
	Deactivate(listID, memberID int, at time.Time) error

	// ActiveRecipients resolves the distinct active subscribers of a list
	// whose member status is active, joined to the association name.
	ActiveRecipients(listID int) ([]model.Recipient, error)

	Subscribers(listID int) ([]model.ListSubscriber, error)
}

type SubscriptionRepository struct {
	DB *sqlx.DB
}

func (r *SubscriptionRepository) Upsert(listID, memberID int, at time.Time) error {
	query := `
		INSERT INTO subscriptions (list_id, member_id, is_active, subscribed_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (list_id, member_id)
		DO UPDATE SET is_active=TRUE, subscribed_at=$3, unsubscribed_at=NULL
	`
	_, err := r.DB.Exec(query, listID, memberID, at)
	if isUniqueViolation(err) {
		// Only reachable through a write path that bypasses the upsert.
		return apperr.Conflict("member %d already subscribed to list %d", memberID, listID)
	}
	return err
}

func (r *SubscriptionRepository) Deactivate(listID, memberID int, at time.Time) error {
	query := `
		UPDATE subscriptions
		SET is_active=FALSE, unsubscribed_at=$1
		WHERE list_id=$2 AND member_id=$3 AND is_active=TRUE
	`
	_, err := r.DB.Exec(query, at, listID, memberID)
	return err
}

func (r *SubscriptionRepository) ActiveRecipients(listID int) ([]model.Recipient, error) {
	recipients := []model.Recipient{}
	query := `
		SELECT DISTINCT ON (m.id)
			m.id                                   AS member_id,
			TRIM(m.first_name || ' ' || m.last_name) AS name,
			m.email                                AS email,
			a.name                                 AS association_name
		FROM subscriptions s
		JOIN members m       ON m.id = s.member_id
		JOIN mailing_lists l ON l.id = s.list_id
		JOIN associations a  ON a.id = l.association_id
		WHERE s.list_id=$1
		  AND s.is_active=TRUE
		  AND m.status='active'
		  AND m.association_id = l.association_id
		ORDER BY m.id
	`
	if err := r.DB.Select(&recipients, query, listID); err != nil {
		return nil, err
	}
	return recipients, nil
}

func (r *SubscriptionRepository) Subscribers(listID int) ([]model.ListSubscriber, error) {
	subscribers := []model.ListSubscriber{}
	query := `
		SELECT m.id AS member_id, m.first_name, m.last_name, m.email,
		       s.is_active, s.subscribed_at
		FROM subscriptions s
		JOIN members m ON m.id = s.member_id
		WHERE s.list_id=$1
		ORDER BY m.id
	`
	if err := r.DB.Select(&subscribers, query, listID); err != nil {
		return nil, err
	}
	return subscribers, nil
}

var _ SubscriptionRepositoryInterface = (*SubscriptionRepository)(nil)
