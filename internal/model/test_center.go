package model

import (
	"strings"
	"time"
)

type TestCenter struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Notes     *string   `db:"notes"      json:"notes"`
	Idle      bool      `db:"idle"       json:"idle"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateTestCenterRequest struct {
	Name  string  `json:"name"  validate:"required,max=255"`
	Notes *string `json:"notes"`
}

type UpdateTestCenterRequest struct {
	Name  string  `json:"name"  validate:"required,max=255"`
	Notes *string `json:"notes"`
	Idle  bool    `json:"idle"`
}

func (r *CreateTestCenterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = trimNotes(r.Notes)
}

func (r *UpdateTestCenterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = trimNotes(r.Notes)
}
