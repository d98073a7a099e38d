package model

import "time"

type MemberStatus string

const (
	MemberStatusPending   MemberStatus = "pending"
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInactive  MemberStatus = "inactive"
	MemberStatusSuspended MemberStatus = "suspended"
)

type Member struct {
	ID            int          `db:"id" json:"id"`
	AssociationID int          `db:"association_id" json:"association_id"`
	FirstName     string       `db:"first_name" json:"first_name"`
	LastName      string       `db:"last_name" json:"last_name"`
	Email         string       `db:"email" json:"email"`
	Status        MemberStatus `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

type Association struct {
	ID     int    `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Status string `db:"status" json:"status"`
}

// Recipient is one resolved campaign target.
type Recipient struct {
	MemberID        int    `db:"member_id" json:"member_id"`
	Name            string `db:"name" json:"name"`
	Email           string `db:"email" json:"email"`
	AssociationName string `db:"association_name" json:"association_name"`
}
