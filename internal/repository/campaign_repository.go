package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	Get(id int) (*model.Campaign, error)
	GetForAssociation(associationID, id int) (*model.Campaign, error)
	List(associationID, offset, limit int, status string) ([]model.Campaign, int, error)

	// MarkSending atomically accepts a send: the UPDATE only matches a
	// draft row, so concurrent send attempts race on the same statement
	// and exactly one wins.
	MarkSending(id, recipientCount int, at time.Time) (bool, error)
	MarkFinished(id int, status model.CampaignStatus) error
	DeleteDraft(associationID, id int) error

	// StuckSending returns ids of campaigns left in `sending` longer than
	// the cutoff, for the worker's startup recovery scan.
	StuckSending(olderThan time.Time) ([]int, error)
}

type CampaignRepository struct {
	DB *sqlx.DB
}

const campaignColumns = `id, association_id, list_id, sender_id, subject, body_template,
	template_name, status, recipient_count, scheduled_at, sent_at, created_at, updated_at`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
		INSERT INTO campaigns
			(association_id, list_id, sender_id, subject, body_template, template_name, status, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRow(query,
		c.AssociationID, c.ListID, c.SenderID, c.Subject, c.BodyTemplate,
		c.TemplateName, c.Status, c.ScheduledAt, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) Get(id int) (*model.Campaign, error) {
	var c model.Campaign
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id=$1`, campaignColumns)
	if err := r.DB.Get(&c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("campaign %d not found", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) GetForAssociation(associationID, id int) (*model.Campaign, error) {
	var c model.Campaign
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id=$1 AND association_id=$2`, campaignColumns)
	if err := r.DB.Get(&c, query, id, associationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("campaign %d not found", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) List(associationID, offset, limit int, status string) ([]model.Campaign, int, error) {
	campaigns := []model.Campaign{}
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE association_id=$1`, campaignColumns)
	args := []interface{}{associationID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	if err := r.DB.Select(&campaigns, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE association_id=$1`
	countArgs := []interface{}{associationID}
	if status != "" {
		countQuery += " AND status=$2"
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.Get(&total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) MarkSending(id, recipientCount int, at time.Time) (bool, error) {
	query := `
		UPDATE campaigns
		SET status=$1, sent_at=$2, recipient_count=$3, updated_at=NOW()
		WHERE id=$4 AND status=$5
	`
	res, err := r.DB.Exec(query, model.CampaignStatusSending, at, recipientCount, id, model.CampaignStatusDraft)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *CampaignRepository) MarkFinished(id int, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	_, err := r.DB.Exec(query, status, id, model.CampaignStatusSending)
	return err
}

func (r *CampaignRepository) DeleteDraft(associationID, id int) error {
	query := `DELETE FROM campaigns WHERE id=$1 AND association_id=$2 AND status=$3`
	res, err := r.DB.Exec(query, id, associationID, model.CampaignStatusDraft)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("campaign %d not found or not a draft", id)
	}
	return nil
}

func (r *CampaignRepository) StuckSending(olderThan time.Time) ([]int, error) {
	ids := []int{}
	query := `SELECT id FROM campaigns WHERE status=$1 AND sent_at < $2 ORDER BY id`
	if err := r.DB.Select(&ids, query, model.CampaignStatusSending, olderThan); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
