package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFilterNormalize(t *testing.T) {
	f := ListFilter{Page: -1, PerPage: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPerPage, f.PerPage)
	assert.Equal(t, 0, f.Offset())

	f = ListFilter{Page: 3, PerPage: 1000}
	f.Normalize()
	assert.Equal(t, MaxPerPage, f.PerPage)
	assert.Equal(t, 2*MaxPerPage, f.Offset())
}

func TestCertifierRequestNormalize(t *testing.T) {
	blank := "   "
	req := CreateCertifierRequest{Name: "  Cisco Systems ", Abbreviation: " cis ", Notes: &blank}
	req.Normalize()

	assert.Equal(t, "Cisco Systems", req.Name)
	assert.Equal(t, "CIS", req.Abbreviation)
	assert.Nil(t, req.Notes)
}

func TestClientRequestNormalizeUppercasesName(t *testing.T) {
	city := " Porto Alegre "
	req := CreateClientRequest{Name: "maria silva", City: &city}
	req.Normalize()

	assert.Equal(t, "MARIA SILVA", req.Name)
	assert.Equal(t, "Porto Alegre", *req.City)
}

func TestExamRequestNormalize(t *testing.T) {
	req := CreateExamRequest{CertificationID: " cis0001 "}
	req.Normalize()
	assert.Equal(t, "CIS0001", req.CertificationID)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleOperator.Valid())
	assert.False(t, Role("headmaster").Valid())
}
