package service

import (
	"context"
	"testing"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertifierCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	repo := newFakeCertifierRepo()
	svc := NewCertifierService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, model.CreateCertifierRequest{Name: " Cisco ", Abbreviation: "cis"})
	require.NoError(t, err)
	assert.Equal(t, "CIS", c.Abbreviation)
	assert.Equal(t, "Cisco", c.Name)

	_, err = svc.Create(ctx, model.CreateCertifierRequest{Name: "Other", Abbreviation: "Cis"})
	assert.ErrorIs(t, err, ErrAbbreviationTaken)
}

func TestCertifierUpdate(t *testing.T) {
	repo := newFakeCertifierRepo(
		&model.Certifier{ID: 1, Name: "Cisco", Abbreviation: "CIS"},
		&model.Certifier{ID: 2, Name: "ISO", Abbreviation: "ISO"},
	)
	svc := NewCertifierService(repo)
	ctx := context.Background()

	c, err := svc.Update(ctx, 1, model.UpdateCertifierRequest{Name: "Cisco Systems", Abbreviation: "cis", Idle: true})
	require.NoError(t, err)
	assert.True(t, c.Idle)

	_, err = svc.Update(ctx, 1, model.UpdateCertifierRequest{Name: "Cisco", Abbreviation: "ISO"})
	assert.ErrorIs(t, err, ErrAbbreviationTaken)

	_, err = svc.Update(ctx, 9, model.UpdateCertifierRequest{Name: "x", Abbreviation: "X"})
	assert.ErrorIs(t, err, ErrCertifierNotFound)
}

func TestCertifierDelete(t *testing.T) {
	repo := newFakeCertifierRepo(&model.Certifier{ID: 1, Name: "Cisco", Abbreviation: "CIS"})
	repo.inUse[1] = true
	svc := NewCertifierService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrCertifierInUse)
	assert.ErrorIs(t, svc.Delete(ctx, 2), ErrCertifierNotFound)

	repo.inUse[1] = false
	assert.NoError(t, svc.Delete(ctx, 1))
}

func TestCertifierGetAllPagination(t *testing.T) {
	repo := newFakeCertifierRepo(
		&model.Certifier{ID: 1, Name: "A", Abbreviation: "A"},
		&model.Certifier{ID: 2, Name: "B", Abbreviation: "B"},
		&model.Certifier{ID: 3, Name: "C", Abbreviation: "C"},
	)
	svc := NewCertifierService(repo)

	_, p, err := svc.GetAll(context.Background(), model.ListFilter{PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 2, p.TotalPages)
	assert.EqualValues(t, 3, p.TotalItems)
}
