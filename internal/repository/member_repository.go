package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
)

type MemberRepositoryInterface interface {
	Create(m *model.Member) error
	Get(id int) (*model.Member, error)

	// ActiveRecipients returns every active member of the association as a
	// campaign recipient, for campaigns with no list reference.
	ActiveRecipients(associationID int) ([]model.Recipient, error)
}

type MemberRepository struct {
	DB *sqlx.DB
}

func (r *MemberRepository) Create(m *model.Member) error {
	if m.Status == "" {
		m.Status = model.MemberStatusPending
	}
	query := `
		INSERT INTO members (association_id, first_name, last_name, email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	return r.DB.QueryRow(query,
		m.AssociationID, m.FirstName, m.LastName, m.Email, m.Status,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *MemberRepository) Get(id int) (*model.Member, error) {
	var m model.Member
	query := `
		SELECT id, association_id, first_name, last_name, email, status, created_at
		FROM members WHERE id=$1
	`
	if err := r.DB.Get(&m, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("member %d not found", id)
		}
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) ActiveRecipients(associationID int) ([]model.Recipient, error) {
	recipients := []model.Recipient{}
	query := `
		SELECT m.id                                     AS member_id,
		       TRIM(m.first_name || ' ' || m.last_name) AS name,
		       m.email                                  AS email,
		       a.name                                   AS association_name
		FROM members m
		JOIN associations a ON a.id = m.association_id
		WHERE m.association_id=$1 AND m.status='active'
		ORDER BY m.id
	`
	if err := r.DB.Select(&recipients, query, associationID); err != nil {
		return nil, err
	}
	return recipients, nil
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)
