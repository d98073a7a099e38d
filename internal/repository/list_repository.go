package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/assohub/assohub-backend/internal/apperr"
	"github.com/assohub/assohub-backend/internal/model"
)

const pqUniqueViolation = "23505"

type ListRepositoryInterface interface {
	Create(l *model.MailingList) error
	GetForAssociation(associationID, id int) (*model.MailingList, error)
	List(associationID int) ([]model.MailingList, error)
	Update(l *model.MailingList) error
	Delete(associationID, id int) error

	// AutoSubscribeLists returns the active lists of the association that
	// have the auto-subscribe flag set.
	AutoSubscribeLists(associationID int) ([]model.MailingList, error)
}

type ListRepository struct {
	DB *sqlx.DB
}

func (r *ListRepository) Create(l *model.MailingList) error {
	l.CreatedAt = time.Now()
	if l.Status == "" {
		l.Status = "active"
	}
	query := `
		INSERT INTO mailing_lists (association_id, name, list_type, auto_subscribe, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRow(query,
		l.AssociationID, l.Name, l.ListType, l.AutoSubscribe, l.Status, l.CreatedAt,
	).Scan(&l.ID)
	if isUniqueViolation(err) {
		return apperr.Conflict("a list named %q already exists", l.Name)
	}
	return err
}

func (r *ListRepository) GetForAssociation(associationID, id int) (*model.MailingList, error) {
	var l model.MailingList
	query := `
		SELECT id, association_id, name, list_type, auto_subscribe, status, created_at, updated_at
		FROM mailing_lists
		WHERE id=$1 AND association_id=$2
	`
	if err := r.DB.Get(&l, query, id, associationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("mailing list %d not found", id)
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListRepository) List(associationID int) ([]model.MailingList, error) {
	lists := []model.MailingList{}
	query := `
		SELECT id, association_id, name, list_type, auto_subscribe, status, created_at, updated_at
		FROM mailing_lists
		WHERE association_id=$1
		ORDER BY name
	`
	if err := r.DB.Select(&lists, query, associationID); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *ListRepository) Update(l *model.MailingList) error {
	query := `
		UPDATE mailing_lists
		SET name=$1, list_type=$2, auto_subscribe=$3, status=$4, updated_at=NOW()
		WHERE id=$5 AND association_id=$6
	`
	res, err := r.DB.Exec(query, l.Name, l.ListType, l.AutoSubscribe, l.Status, l.ID, l.AssociationID)
	if isUniqueViolation(err) {
		return apperr.Conflict("a list named %q already exists", l.Name)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("mailing list %d not found", l.ID)
	}
	return nil
}

func (r *ListRepository) Delete(associationID, id int) error {
	res, err := r.DB.Exec(`DELETE FROM mailing_lists WHERE id=$1 AND association_id=$2`, id, associationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("mailing list %d not found", id)
	}
	return nil
}

func (r *ListRepository) AutoSubscribeLists(associationID int) ([]model.MailingList, error) {
	lists := []model.MailingList{}
	query := `
		SELECT id, association_id, name, list_type, auto_subscribe, status, created_at, updated_at
		FROM mailing_lists
		WHERE association_id=$1 AND auto_subscribe=TRUE AND status='active'
	`
	if err := r.DB.Select(&lists, query, associationID); err != nil {
		return nil, err
	}
	return lists, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

var _ ListRepositoryInterface = (*ListRepository)(nil)
