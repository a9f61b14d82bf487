package model

import (
	"strings"
	"time"
)

// FirstClientUID is where client numbering starts.
const FirstClientUID int64 = 10000000

type Client struct {
	UID       int64     `db:"uid"        json:"uid"`
	Name      string    `db:"name"       json:"name"` // stored upper case
	Country   *string   `db:"country"    json:"country"`
	City      *string   `db:"city"       json:"city"`
	Notes     *string   `db:"notes"      json:"notes"`
	Idle      bool      `db:"idle"       json:"idle"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateClientRequest struct {
	Name    string  `json:"name"    validate:"required,max=255"`
	Country *string `json:"country" validate:"omitempty,max=255"`
	City    *string `json:"city"    validate:"omitempty,max=255"`
	Notes   *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    string  `json:"name"    validate:"required,max=255"`
	Country *string `json:"country" validate:"omitempty,max=255"`
	City    *string `json:"city"    validate:"omitempty,max=255"`
	Notes   *string `json:"notes"`
	Idle    bool    `json:"idle"`
}

func (r *CreateClientRequest) Normalize() {
	r.Name = strings.ToUpper(strings.TrimSpace(r.Name))
	r.Country = trimNotes(r.Country)
	r.City = trimNotes(r.City)
	r.Notes = trimNotes(r.Notes)
}

func (r *UpdateClientRequest) Normalize() {
	r.Name = strings.ToUpper(strings.TrimSpace(r.Name))
	r.Country = trimNotes(r.Country)
	r.City = trimNotes(r.City)
	r.Notes = trimNotes(r.Notes)
}
