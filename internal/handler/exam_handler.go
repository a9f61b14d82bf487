package handler

import (
	"net/http"
	"strconv"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/asventura96/testcenter/internal/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ExamHandler struct {
	svc service.ExamService
	log *zap.Logger
}

func NewExamHandler(svc service.ExamService, log *zap.Logger) *ExamHandler {
	return &ExamHandler{svc: svc, log: log}
}

func parseExamFilter(r *http.Request) (model.ExamFilter, utils.ValidationErrors) {
	q := r.URL.Query()
	filter := model.ExamFilter{
		ListFilter:      parseListFilter(r),
		CertificationID: model.NormalizeCertificationID(q.Get("certification_id")),
		Presence:        parseBoolQuery(q.Get("presence")),
	}
	errs := utils.ValidationErrors{}

	if v := q.Get("client_uid"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs["client_uid"] = "must be a number"
		} else {
			filter.ClientUID = &uid
		}
	}
	if v := q.Get("test_center_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			errs["test_center_id"] = "must be a number"
		} else {
			filter.TestCenterID = &id
		}
	}

	var err error
	if filter.DateFrom, err = parseDateQuery(q.Get("date_from")); err != nil {
		errs["date_from"] = "must be formatted as YYYY-MM-DD"
	}
	if filter.DateTo, err = parseDateQuery(q.Get("date_to")); err != nil {
		errs["date_to"] = "must be formatted as YYYY-MM-DD"
	}
	return filter, errs
}

// GetAll godoc
// @Summary      List exams
// @Tags         exams
// @Produce      json
// @Param        search            query  string  false  "Search by client, certification name or id"
// @Param        client_uid        query  int     false  "Filter by client"
// @Param        certification_id  query  string  false  "Filter by certification"
// @Param        test_center_id    query  int     false  "Filter by test center"
// @Param        date_from         query  string  false  "First day, YYYY-MM-DD"
// @Param        date_to           query  string  false  "Last day (inclusive), YYYY-MM-DD"
// @Param        presence          query  bool    false  "Filter by attendance"
// @Param        order_by          query  string  false  "id, date, presence, client, certification or test_center"
// @Param        descending        query  bool    false  "Reverse the order"
// @Param        page              query  int     false  "Page number (default 1)"
// @Param        per_page          query  int     false  "Items per page (default 20, max 200)"
// @Security     BearerAuth
// @Success      200  {object}  response.PaginatedResponse
// @Failure      400  {object}  response.Response
// @Router       /exams [get]
func (h *ExamHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseExamFilter(r)
	if errs.HasErrors() {
		response.BadRequest(w, "Invalid filter", errs)
		return
	}

	exams, pagination, err := h.svc.GetAll(r.Context(), filter)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Paginated(w, "Exams retrieved", exams, pagination)
}

// GetByID godoc
// @Summary      Get exam
// @Tags         exams
// @Produce      json
// @Param        id   path  int  true  "Exam ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /exams/{id} [get]
func (h *ExamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	exam, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Exam retrieved", exam)
}

// Create godoc
// @Summary      Schedule exam
// @Tags         exams
// @Accept       json
// @Produce      json
// @Param        request  body  model.CreateExamRequest  true  "Exam"
// @Security     BearerAuth
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /exams [post]
func (h *ExamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateExamRequest
	if !decode(w, r, &req) {
		return
	}

	exam, err := h.svc.Create(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Created(w, "Exam created", exam)
}

// Update godoc
// @Summary      Update exam
// @Tags         exams
// @Accept       json
// @Produce      json
// @Param        id       path  int                      true  "Exam ID"
// @Param        request  body  model.UpdateExamRequest  true  "Exam"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /exams/{id} [put]
func (h *ExamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	var req model.UpdateExamRequest
	if !decode(w, r, &req) {
		return
	}

	exam, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Exam updated", exam)
}

// Delete godoc
// @Summary      Delete exam
// @Tags         exams
// @Produce      json
// @Param        id   path  int  true  "Exam ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /exams/{id} [delete]
func (h *ExamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Exam deleted", nil)
}

// Ticket godoc
// @Summary      Download admission ticket
// @Description  Renders the exam ticket PDF with a check-in QR code
// @Tags         exams
// @Produce      application/pdf
// @Param        id   path  int  true  "Exam ID"
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /exams/{id}/ticket [get]
func (h *ExamHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	pdf, filename, err := h.svc.Ticket(r.Context(), id)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.PDF(w, filename, pdf)
}

// VerifyCheckin godoc
// @Summary      Verify a ticket
// @Description  Public endpoint behind the ticket QR code
// @Tags         check-in
// @Produce      json
// @Param        token  path  string  true  "Check-in token"
// @Success      200  {object}  response.Response{data=model.CheckinResponse}
// @Router       /checkin/{token} [get]
func (h *ExamHandler) VerifyCheckin(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.VerifyCheckin(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, result.Message, result)
}

// Checkin godoc
// @Summary      Confirm attendance
// @Tags         check-in
// @Produce      json
// @Param        token  path  string  true  "Check-in token"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /checkin/{token} [post]
func (h *ExamHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	exam, err := h.svc.Checkin(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Attendance confirmed", exam)
}
