package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is one client sitting one certification at one test center.
type Exam struct {
	ID              int       `db:"id"               json:"id"`
	CertificationID string    `db:"certification_id" json:"certification_id"`
	TestCenterID    int       `db:"test_center_id"   json:"test_center_id"`
	ClientUID       int64     `db:"client_uid"       json:"client_uid"`
	Date            time.Time `db:"date"             json:"date"`
	Presence        bool      `db:"presence"         json:"presence"`
	Notes           *string   `db:"notes"            json:"notes"`
	CheckinToken    uuid.UUID `db:"checkin_token"    json:"checkin_token"`
	TicketURL       *string   `db:"ticket_url"       json:"ticket_url"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"       json:"updated_at"`

	// Join fields
	CertificationName *string `db:"certification_name" json:"certification_name,omitempty"`
	TestCenterName    *string `db:"test_center_name"   json:"test_center_name,omitempty"`
	ClientName        *string `db:"client_name"        json:"client_name,omitempty"`
}

type CreateExamRequest struct {
	CertificationID string    `json:"certification_id" validate:"required,max=7"`
	TestCenterID    int       `json:"test_center_id"   validate:"required,gt=0"`
	ClientUID       int64     `json:"client_uid"       validate:"required,gt=0"`
	Date            time.Time `json:"date"             validate:"required"`
	Presence        bool      `json:"presence"`
	Notes           *string   `json:"notes"`
}

type UpdateExamRequest = CreateExamRequest

func (r *CreateExamRequest) Normalize() {
	r.CertificationID = NormalizeCertificationID(r.CertificationID)
	r.Notes = trimNotes(r.Notes)
}

type ExamFilter struct {
	ListFilter
	ClientUID       *int64
	CertificationID string
	TestCenterID    *int
	DateFrom        *time.Time
	DateTo          *time.Time // inclusive day
	Presence        *bool
}

// CheckinResponse is returned by the public ticket verification endpoint.
type CheckinResponse struct {
	IsValid bool   `json:"is_valid"`
	Exam    *Exam  `json:"exam,omitempty"`
	Message string `json:"message"`
}
