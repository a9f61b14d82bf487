package service

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/sequence"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newCertificationFixture() (CertificationService, *fakeCertificationRepo) {
	certifiers := newFakeCertifierRepo(
		&model.Certifier{ID: 1, Name: "Cisco", Abbreviation: "CIS"},
		&model.Certifier{ID: 2, Name: "ISO", Abbreviation: "ISO"},
		&model.Certifier{ID: 3, Name: "Idle Vendor", Abbreviation: "IDL", Idle: true},
	)
	repo := newFakeCertificationRepo()
	return NewCertificationService(repo, certifiers, zap.NewNop()), repo
}

func TestCertificationCreateAssignsSequentialIDs(t *testing.T) {
	svc, _ := newCertificationFixture()
	ctx := context.Background()

	var got []string
	for _, certifierID := range []int{1, 1, 2} {
		c, err := svc.Create(ctx, model.CreateCertificationRequest{CertifierID: certifierID, Name: "Exam"})
		require.NoError(t, err)
		got = append(got, c.ID)
	}

	assert.Equal(t, []string{"CIS0001", "CIS0002", "ISO0001"}, got)
}

func TestCertificationCreateUnderIdleCertifier(t *testing.T) {
	svc, _ := newCertificationFixture()

	c, err := svc.Create(context.Background(), model.CreateCertificationRequest{CertifierID: 3, Name: "Legacy"})
	require.NoError(t, err)
	assert.Equal(t, "IDL0001", c.ID)
}

func TestCertificationCreateMissingCertifier(t *testing.T) {
	svc, repo := newCertificationFixture()

	_, err := svc.Create(context.Background(), model.CreateCertificationRequest{CertifierID: 42, Name: "x"})

	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "certifier_id", refErr.Field)
	assert.Zero(t, repo.increments)
}

func TestCertificationCreateSkipsIDsTakenOutsideTheCounter(t *testing.T) {
	svc, repo := newCertificationFixture()
	repo.rows["CIS0001"] = &model.Certification{ID: "CIS0001", CertifierID: 1, Name: "imported"}

	c, err := svc.Create(context.Background(), model.CreateCertificationRequest{CertifierID: 1, Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, "CIS0002", c.ID)
}

func TestCertificationCreateKeepsCounterPastTakenRun(t *testing.T) {
	svc, repo := newCertificationFixture()
	for _, id := range []string{"CIS0001", "CIS0002", "CIS0003"} {
		repo.rows[id] = &model.Certification{ID: id, CertifierID: 1, Name: "imported"}
	}
	ctx := context.Background()

	_, err := svc.Create(ctx, model.CreateCertificationRequest{CertifierID: 1, Name: "first"})
	require.ErrorIs(t, err, sequence.ErrConcurrencyExhausted)
	assert.Equal(t, sequence.MaxAttempts, repo.counters["CIS"])
	assert.Len(t, repo.rows, 3)

	c, err := svc.Create(ctx, model.CreateCertificationRequest{CertifierID: 1, Name: "second"})
	require.NoError(t, err)
	assert.Equal(t, "CIS0004", c.ID)
}

func TestCertificationCreateOverflowLeavesCounter(t *testing.T) {
	svc, repo := newCertificationFixture()
	repo.counters["CIS"] = sequence.Max

	_, err := svc.Create(context.Background(), model.CreateCertificationRequest{CertifierID: 1, Name: "x"})
	assert.ErrorIs(t, err, sequence.ErrOverflow)
	assert.Equal(t, sequence.Max, repo.counters["CIS"])
	assert.Empty(t, repo.rows)
}

func TestCertificationCreateConcurrentWritersHaveNoGaps(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, repo := newCertificationFixture()
	const writers = 40

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < writers; i++ {
		certifierID := 1 + i%2
		g.Go(func() error {
			_, err := svc.Create(ctx, model.CreateCertificationRequest{CertifierID: certifierID, Name: "load"})
			return err
		})
	}
	require.NoError(t, g.Wait())

	ids := make([]string, 0, len(repo.rows))
	for id := range repo.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var want []string
	for _, prefix := range []string{"CIS", "ISO"} {
		for n := 1; n <= writers/2; n++ {
			want = append(want, fmt.Sprintf("%s%04d", prefix, n))
		}
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCertificationUpdateKeepsID(t *testing.T) {
	svc, _ := newCertificationFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, model.CreateCertificationRequest{CertifierID: 1, Name: "CCNA"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "cis0001", model.UpdateCertificationRequest{CertifierID: 2, Name: " CCNP ", Duration: 90})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, 2, updated.CertifierID)
	assert.Equal(t, "CCNP", updated.Name)

	_, err = svc.Update(ctx, c.ID, model.UpdateCertificationRequest{CertifierID: 99, Name: "x"})
	var refErr *ReferenceError
	assert.ErrorAs(t, err, &refErr)
}

func TestCertificationDelete(t *testing.T) {
	svc, repo := newCertificationFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, model.CreateCertificationRequest{CertifierID: 1, Name: "CCNA"})
	require.NoError(t, err)

	repo.inUse["CIS0001"] = true
	assert.ErrorIs(t, svc.Delete(ctx, "CIS0001"), ErrCertificationInUse)

	repo.inUse["CIS0001"] = false
	assert.NoError(t, svc.Delete(ctx, "CIS0001"))
	assert.ErrorIs(t, svc.Delete(ctx, "CIS0001"), ErrCertificationNotFound)
}
