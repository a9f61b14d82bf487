package model

import (
	"strings"
	"time"
)

// Certification ids are assigned once at creation, see package sequence.
type Certification struct {
	ID          string    `db:"id"           json:"id"`
	CertifierID int       `db:"certifier_id" json:"certifier_id"`
	Name        string    `db:"name"         json:"name"`
	ExamCode    *string   `db:"exam_code"    json:"exam_code"`
	Duration    int       `db:"duration"     json:"duration"` // minutes
	Notes       *string   `db:"notes"        json:"notes"`
	Idle        bool      `db:"idle"         json:"idle"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`

	// Join fields
	CertifierName         *string `db:"certifier_name"         json:"certifier_name,omitempty"`
	CertifierAbbreviation *string `db:"certifier_abbreviation" json:"certifier_abbreviation,omitempty"`
}

type CreateCertificationRequest struct {
	CertifierID int     `json:"certifier_id" validate:"required,gt=0"`
	Name        string  `json:"name"         validate:"required,max=255"`
	ExamCode    *string `json:"exam_code"    validate:"omitempty,max=50"`
	Duration    int     `json:"duration"     validate:"gte=0"`
	Notes       *string `json:"notes"`
}

type UpdateCertificationRequest struct {
	CertifierID int     `json:"certifier_id" validate:"required,gt=0"`
	Name        string  `json:"name"         validate:"required,max=255"`
	ExamCode    *string `json:"exam_code"    validate:"omitempty,max=50"`
	Duration    int     `json:"duration"     validate:"gte=0"`
	Notes       *string `json:"notes"`
	Idle        bool    `json:"idle"`
}

func (r *CreateCertificationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ExamCode = trimNotes(r.ExamCode)
	r.Notes = trimNotes(r.Notes)
}

func (r *UpdateCertificationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ExamCode = trimNotes(r.ExamCode)
	r.Notes = trimNotes(r.Notes)
}

type CertificationFilter struct {
	ListFilter
	CertifierID *int
}

// NormalizeCertificationID makes id lookups case-insensitive.
func NormalizeCertificationID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
