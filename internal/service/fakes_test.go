package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/sequence"
	"github.com/google/uuid"
)

type fakeCertifierRepo struct {
	mu     sync.Mutex
	rows   map[int]*model.Certifier
	nextID int
	inUse  map[int]bool
}

func newFakeCertifierRepo(certifiers ...*model.Certifier) *fakeCertifierRepo {
	r := &fakeCertifierRepo{rows: map[int]*model.Certifier{}, inUse: map[int]bool{}, nextID: 1}
	for _, c := range certifiers {
		if c.ID == 0 {
			c.ID = r.nextID
		}
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
		r.rows[c.ID] = c
	}
	return r
}

func (r *fakeCertifierRepo) FindAll(_ context.Context, _ model.ListFilter) ([]*model.Certifier, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Certifier{}
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeCertifierRepo) FindByID(_ context.Context, id int) (*model.Certifier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCertifierRepo) FindByAbbreviation(_ context.Context, abbreviation string) (*model.Certifier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if strings.EqualFold(c.Abbreviation, abbreviation) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCertifierRepo) Create(_ context.Context, c *model.Certifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCertifierRepo) Update(_ context.Context, c *model.Certifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCertifierRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	if r.inUse[id] {
		return repository.ErrForeignKey
	}
	delete(r.rows, id)
	return nil
}

// fakeCertificationRepo keeps counters and rows in memory. CreateTx holds a
// single lock for the whole transaction and restores a snapshot when fn
// fails, which is what the row lock and rollback give in PostgreSQL.
type fakeCertificationRepo struct {
	mu       sync.Mutex
	rows     map[string]*model.Certification
	counters map[string]int
	inUse    map[string]bool
	// Increment calls, committed or not.
	increments int
}

func newFakeCertificationRepo() *fakeCertificationRepo {
	return &fakeCertificationRepo{
		rows:     map[string]*model.Certification{},
		counters: map[string]int{},
		inUse:    map[string]bool{},
	}
}

func (r *fakeCertificationRepo) FindAll(_ context.Context, _ model.CertificationFilter) ([]*model.Certification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Certification{}
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeCertificationRepo) FindByID(_ context.Context, id string) (*model.Certification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCertificationRepo) CreateTx(_ context.Context, fn func(tx repository.CertificationTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	counters := make(map[string]int, len(r.counters))
	for k, v := range r.counters {
		counters[k] = v
	}
	tx := &fakeCertificationTx{repo: r, inserted: map[string]*model.Certification{}}
	if err := fn(tx); err != nil {
		r.counters = counters
		return err
	}
	for id, c := range tx.inserted {
		r.rows[id] = c
	}
	return nil
}

func (r *fakeCertificationRepo) Update(_ context.Context, c *model.Certification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCertificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	if r.inUse[id] {
		return repository.ErrForeignKey
	}
	delete(r.rows, id)
	return nil
}

type fakeCertificationTx struct {
	repo     *fakeCertificationRepo
	inserted map[string]*model.Certification
}

func (t *fakeCertificationTx) Increment(_ context.Context, abbreviation string) (int, error) {
	t.repo.increments++
	t.repo.counters[abbreviation]++
	return t.repo.counters[abbreviation], nil
}

func (t *fakeCertificationTx) Insert(_ context.Context, c *model.Certification) error {
	if _, ok := t.repo.rows[c.ID]; ok {
		return fmt.Errorf("insert %s: %w", c.ID, sequence.ErrConflict)
	}
	if _, ok := t.inserted[c.ID]; ok {
		return fmt.Errorf("insert %s: %w", c.ID, sequence.ErrConflict)
	}
	cp := *c
	t.inserted[c.ID] = &cp
	return nil
}

type fakeClientRepo struct {
	mu   sync.Mutex
	rows map[int64]*model.Client
	next int64
}

func newFakeClientRepo(clients ...*model.Client) *fakeClientRepo {
	r := &fakeClientRepo{rows: map[int64]*model.Client{}, next: model.FirstClientUID}
	for _, c := range clients {
		r.rows[c.UID] = c
		if c.UID >= r.next {
			r.next = c.UID + 1
		}
	}
	return r
}

func (r *fakeClientRepo) FindAll(_ context.Context, _ model.ListFilter) ([]*model.Client, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Client{}
	for _, c := range r.rows {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClientRepo) FindByUID(_ context.Context, uid int64) (*model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[uid]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) Create(_ context.Context, c *model.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.UID = r.next
	r.next++
	cp := *c
	r.rows[c.UID] = &cp
	return nil
}

func (r *fakeClientRepo) Update(_ context.Context, c *model.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.UID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.rows[c.UID] = &cp
	return nil
}

func (r *fakeClientRepo) Delete(_ context.Context, uid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[uid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, uid)
	return nil
}

type fakeTestCenterRepo struct {
	mu   sync.Mutex
	rows map[int]*model.TestCenter
}

func newFakeTestCenterRepo(centers ...*model.TestCenter) *fakeTestCenterRepo {
	r := &fakeTestCenterRepo{rows: map[int]*model.TestCenter{}}
	for _, c := range centers {
		r.rows[c.ID] = c
	}
	return r
}

func (r *fakeTestCenterRepo) FindAll(_ context.Context, _ model.ListFilter) ([]*model.TestCenter, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.TestCenter{}
	for _, c := range r.rows {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTestCenterRepo) FindByID(_ context.Context, id int) (*model.TestCenter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeTestCenterRepo) Create(_ context.Context, c *model.TestCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = len(r.rows) + 1
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeTestCenterRepo) Update(_ context.Context, c *model.TestCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeTestCenterRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeExamRepo struct {
	mu         sync.Mutex
	rows       map[int]*model.Exam
	next       int
	ticketURLs map[int]string
	marks      int
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{rows: map[int]*model.Exam{}, next: 1, ticketURLs: map[int]string{}}
}

func (r *fakeExamRepo) FindAll(_ context.Context, _ model.ExamFilter) ([]*model.Exam, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Exam{}
	for _, e := range r.rows {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeExamRepo) FindByID(_ context.Context, id int) (*model.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExamRepo) FindByCheckinToken(_ context.Context, token uuid.UUID) (*model.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.CheckinToken == token {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeExamRepo) Create(_ context.Context, e *model.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.next
	r.next++
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *fakeExamRepo) Update(_ context.Context, e *model.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *fakeExamRepo) MarkPresent(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.marks++
	e.Presence = true
	return nil
}

func (r *fakeExamRepo) UpdateTicketURL(_ context.Context, id int, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.ticketURLs[id] = url
	e.TicketURL = &url
	return nil
}

func (r *fakeExamRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeStore struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	deleted  []string
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string][]byte{}}
}

func (s *fakeStore) UploadPDF(_ context.Context, folder string, data []byte, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return "", err
	}
	url := fmt.Sprintf("http://minio.local/bucket/%s/%s.pdf", folder, name)
	s.uploads[url] = data
	return url, nil
}

func (s *fakeStore) DeleteFile(_ context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileURL)
	delete(s.uploads, fileURL)
	return nil
}

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[uuid.UUID]*model.User{}}
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, email) && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}
