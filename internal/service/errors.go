package service

import (
	"errors"
	"fmt"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
)

var ErrInvalidID = errors.New("invalid id")

// ReferenceError reports a request field that points at a row that does not exist.
type ReferenceError struct {
	Field string
	Value interface{}
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %v does not exist", e.Field, e.Value)
}

func paginate(filter model.ListFilter, total int64) *response.Pagination {
	filter.Normalize()

	totalPages := int(total) / filter.PerPage
	if int(total)%filter.PerPage > 0 {
		totalPages++
	}

	return &response.Pagination{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
