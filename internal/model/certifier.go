package model

import (
	"strings"
	"time"
)

type Certifier struct {
	ID           int       `db:"id"           json:"id"`
	Name         string    `db:"name"         json:"name"`
	Abbreviation string    `db:"abbreviation" json:"abbreviation"` // upper case, unique
	Notes        *string   `db:"notes"        json:"notes"`
	Idle         bool      `db:"idle"         json:"idle"`
	CreatedAt    time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"   json:"updated_at"`
}

type CreateCertifierRequest struct {
	Name         string  `json:"name"         validate:"required,max=255"`
	Abbreviation string  `json:"abbreviation" validate:"required,max=3,alphanum"`
	Notes        *string `json:"notes"`
}

type UpdateCertifierRequest struct {
	Name         string  `json:"name"         validate:"required,max=255"`
	Abbreviation string  `json:"abbreviation" validate:"required,max=3,alphanum"`
	Notes        *string `json:"notes"`
	Idle         bool    `json:"idle"`
}

func (r *CreateCertifierRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Abbreviation = NormalizeAbbreviation(r.Abbreviation)
	r.Notes = trimNotes(r.Notes)
}

func (r *UpdateCertifierRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Abbreviation = NormalizeAbbreviation(r.Abbreviation)
	r.Notes = trimNotes(r.Notes)
}

// NormalizeAbbreviation trims and upper-cases so uniqueness is case-insensitive.
func NormalizeAbbreviation(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func trimNotes(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
