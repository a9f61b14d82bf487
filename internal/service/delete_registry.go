package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const (
	KindCertifier     = "certifier"
	KindCertification = "certification"
	KindClient        = "client"
	KindTestCenter    = "test-center"
	KindExam          = "exam"
)

var ErrUnknownKind = errors.New("unknown record kind")

// DeleteFunc removes one record given its id as it appears in a URL.
type DeleteFunc func(ctx context.Context, id string) error

// DeleteRegistry dispatches deletes by entity kind. It is filled once at
// startup and read-only afterwards.
type DeleteRegistry struct {
	deleters map[string]DeleteFunc
}

func NewDeleteRegistry(
	certifiers CertifierService,
	certifications CertificationService,
	clients ClientService,
	testCenters TestCenterService,
	exams ExamService,
) *DeleteRegistry {
	return &DeleteRegistry{deleters: map[string]DeleteFunc{
		KindCertifier:     intDeleter(certifiers.Delete),
		KindCertification: certifications.Delete,
		KindClient: func(ctx context.Context, id string) error {
			uid, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidID, id)
			}
			return clients.Delete(ctx, uid)
		},
		KindTestCenter: intDeleter(testCenters.Delete),
		KindExam:       intDeleter(exams.Delete),
	}}
}

func intDeleter(del func(ctx context.Context, id int) error) DeleteFunc {
	return func(ctx context.Context, id string) error {
		n, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		return del(ctx, n)
	}
}

func (r *DeleteRegistry) Delete(ctx context.Context, kind, id string) error {
	del, ok := r.deleters[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return del(ctx, id)
}

// Kinds lists the registered tags in sorted order.
func (r *DeleteRegistry) Kinds() []string {
	kinds := make([]string, 0, len(r.deleters))
	for k := range r.deleters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
