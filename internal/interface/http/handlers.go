// Package http implements the REST API for Conference Hub.
package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/application/saga"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/interface/http/presenter"
	"github.com/brightclass/conference-hub/pkg/logger"
)

// maxRequestBody limits JSON request bodies (1 MB).
const maxRequestBody = 1 << 20

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Conference Hub API",
		"version":     "v1",
		"description": "REST API for Conference Hub - Parent-Teacher Meeting Preparation",
		"endpoints": map[string]string{
			"health":         "/health",
			"students":       "/api/v1/students",
			"talking_points": "/api/v1/students/{id}/talking-points",
			"agenda":         "/api/v1/students/{id}/agenda",
			"meetings":       "/api/v1/meetings",
			"overview":       "/api/v1/overview/{grade}",
		},
		"documentation": "https://github.com/brightclass/conference-hub",
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListStudentsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student listing not configured")
		return
	}

	q := query.ListStudentsQuery{
		Grade:           getQueryParam(r, "grade", ""),
		TeacherID:       getQueryParam(r, "teacher_id", ""),
		Search:          getQueryParam(r, "search", ""),
		Limit:           getQueryParamInt(r, "limit", 50),
		Offset:          getQueryParamInt(r, "offset", 0),
		IncludeInactive: getQueryParamBool(r, "include_inactive"),
	}

	result, err := s.deps.ListStudentsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "failed to list students")
		return
	}

	meta := &ResponseMeta{
		TotalCount: result.Count,
		PageSize:   q.Limit,
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.GetStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student handler not configured")
		return
	}

	result, err := s.deps.GetStudentHandler.Handle(r.Context(), query.GetStudentQuery{StudentID: studentID})
	if err != nil {
		s.respondError(w, r, err, "failed to get student")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCreateStudent handles POST /api/v1/students
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.CreateStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student creation not configured")
		return
	}

	var req struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Grade       string `json:"grade"`
		Section     string `json:"section"`
		RollNumber  int    `json:"roll_number"`
		TeacherID   string `json:"teacher_id"`
		ParentEmail string `json:"parent_email"`
		ParentPhone string `json:"parent_phone"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.CreateStudentCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Grade:         req.Grade,
		Section:       req.Section,
		RollNumber:    req.RollNumber,
		TeacherID:     req.TeacherID,
		ParentEmail:   req.ParentEmail,
		ParentPhone:   req.ParentPhone,
		CorrelationID: requestID(r.Context()),
	}

	result, err := s.deps.CreateStudentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to create student")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleImportStudents handles POST /api/v1/students/import
func (s *Server) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.ImportStudentsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student import not configured")
		return
	}

	var req struct {
		TeacherID string `json:"teacher_id"`
		Rows      []struct {
			FirstName   string `json:"first_name"`
			LastName    string `json:"last_name"`
			Grade       string `json:"grade"`
			Section     string `json:"section"`
			RollNumber  int    `json:"roll_number"`
			ParentEmail string `json:"parent_email"`
			ParentPhone string `json:"parent_phone"`
		} `json:"rows"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ImportStudentsCommand{TeacherID: req.TeacherID}
	for _, row := range req.Rows {
		cmd.Rows = append(cmd.Rows, command.ImportStudentRow{
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			Grade:       row.Grade,
			Section:     row.Section,
			RollNumber:  row.RollNumber,
			ParentEmail: row.ParentEmail,
			ParentPhone: row.ParentPhone,
		})
	}

	result, err := s.deps.ImportStudentsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to import students")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD HANDLERS (assessments, incidents, communications)
// ══════════════════════════════════════════════════════════════════════════════

// handleListAssessments handles GET /api/v1/students/{id}/assessments
func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.ListAssessmentsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Assessment listing not configured")
		return
	}

	q := query.ListAssessmentsQuery{
		StudentID: studentID,
		Subject:   getQueryParam(r, "subject", ""),
		Limit:     getQueryParamInt(r, "limit", 10),
	}

	result, err := s.deps.ListAssessmentsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "failed to list assessments")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRecordAssessment handles POST /api/v1/students/{id}/assessments
func (s *Server) handleRecordAssessment(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.RecordAssessmentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Assessment recording not configured")
		return
	}

	var req struct {
		Subject  string   `json:"subject"`
		Type     string   `json:"type"`
		Score    float64  `json:"score"`
		MaxScore float64  `json:"max_score"`
		Date     string   `json:"date"`
		Topics   []string `json:"topics"`
		Feedback string   `json:"feedback"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordAssessmentCommand{
		StudentID:     studentID,
		Subject:       req.Subject,
		Type:          req.Type,
		Score:         req.Score,
		MaxScore:      req.MaxScore,
		Date:          parseDate(req.Date),
		Topics:        req.Topics,
		Feedback:      req.Feedback,
		CorrelationID: requestID(r.Context()),
	}

	result, err := s.deps.RecordAssessmentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to record assessment")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleRecordIncident handles POST /api/v1/students/{id}/incidents
func (s *Server) handleRecordIncident(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.RecordIncidentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Incident recording not configured")
		return
	}

	var req struct {
		Type             string `json:"type"`
		Category         string `json:"category"`
		Description      string `json:"description"`
		Severity         string `json:"severity"`
		ActionTaken      string `json:"action_taken"`
		FollowUpRequired bool   `json:"follow_up_required"`
		TeacherID        string `json:"teacher_id"`
		Date             string `json:"date"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordIncidentCommand{
		StudentID:        studentID,
		Type:             req.Type,
		Category:         req.Category,
		Description:      req.Description,
		Severity:         req.Severity,
		ActionTaken:      req.ActionTaken,
		FollowUpRequired: req.FollowUpRequired,
		TeacherID:        req.TeacherID,
		Date:             parseDate(req.Date),
	}

	result, err := s.deps.RecordIncidentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to record incident")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleRecordCommunication handles POST /api/v1/students/{id}/communications
func (s *Server) handleRecordCommunication(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.RecordCommunicationHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Communication recording not configured")
		return
	}

	var req struct {
		Type           string `json:"type"`
		InitiatedBy    string `json:"initiated_by"`
		Subject        string `json:"subject"`
		Content        string `json:"content"`
		FollowUpNeeded bool   `json:"follow_up_needed"`
		FollowUpDate   string `json:"follow_up_date"`
		TeacherID      string `json:"teacher_id"`
		Date           string `json:"date"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordCommunicationCommand{
		StudentID:      studentID,
		Type:           req.Type,
		InitiatedBy:    req.InitiatedBy,
		Subject:        req.Subject,
		Content:        req.Content,
		FollowUpNeeded: req.FollowUpNeeded,
		FollowUpDate:   parseDate(req.FollowUpDate),
		TeacherID:      req.TeacherID,
		Date:           parseDate(req.Date),
	}

	result, err := s.deps.RecordCommunicationHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to record communication")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// BRIEFING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetTalkingPoints handles GET /api/v1/students/{id}/talking-points
func (s *Server) handleGetTalkingPoints(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.GetTalkingPointsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Talking points handler not configured")
		return
	}

	q := query.GetTalkingPointsQuery{
		StudentID: studentID,
		Refresh:   getQueryParamBool(r, "refresh"),
	}

	result, err := s.deps.GetTalkingPointsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "failed to build talking points")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleDownloadAgenda handles GET /api/v1/students/{id}/agenda
// The briefing is rendered as plain text and served as a file download.
func (s *Server) handleDownloadAgenda(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.GetTalkingPointsHandler == nil || s.deps.AgendaPresenter == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Agenda handler not configured")
		return
	}

	q := query.GetTalkingPointsQuery{
		StudentID: studentID,
		Refresh:   getQueryParamBool(r, "refresh"),
	}

	result, err := s.deps.GetTalkingPointsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "failed to build agenda")
		return
	}

	agenda := s.deps.AgendaPresenter.FormatAgenda(result.Briefing)
	first, last := splitFullName(result.Briefing.MeetingSummary.StudentName)
	filename := presenter.AgendaFilename(first, last, result.Briefing.MeetingSummary.MeetingDate)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(agenda))
}

// ══════════════════════════════════════════════════════════════════════════════
// MEETING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListMeetings handles GET /api/v1/meetings
func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListMeetingsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Meeting listing not configured")
		return
	}

	q := query.ListMeetingsQuery{
		StudentID:    getQueryParam(r, "student_id", ""),
		TeacherID:    getQueryParam(r, "teacher_id", ""),
		UpcomingOnly: getQueryParamBool(r, "upcoming"),
	}

	result, err := s.deps.ListMeetingsHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "failed to list meetings")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleScheduleMeeting handles POST /api/v1/meetings
func (s *Server) handleScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	if s.deps.ScheduleMeetingHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Meeting scheduling not configured")
		return
	}

	var req struct {
		StudentID    string `json:"student_id"`
		TeacherID    string `json:"teacher_id"`
		ScheduledFor string `json:"scheduled_for"`
		Notes        string `json:"notes"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "scheduled_for must be an RFC 3339 timestamp")
		return
	}

	cmd := command.ScheduleMeetingCommand{
		StudentID:    req.StudentID,
		TeacherID:    req.TeacherID,
		ScheduledFor: scheduledFor,
		Notes:        req.Notes,
	}

	result, err := s.deps.ScheduleMeetingHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to schedule meeting")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleUpdateMeeting handles PATCH /api/v1/meetings/{id}
func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	if meetingID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Meeting ID is required")
		return
	}

	if s.deps.UpdateMeetingHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Meeting updates not configured")
		return
	}

	var req struct {
		Action  string `json:"action"`
		NewTime string `json:"new_time"`
		Notes   string `json:"notes"`
		Reason  string `json:"reason"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.UpdateMeetingCommand{
		MeetingID: meetingID,
		Action:    req.Action,
		Notes:     req.Notes,
		Reason:    req.Reason,
	}
	if req.NewTime != "" {
		newTime, err := time.Parse(time.RFC3339, req.NewTime)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "new_time must be an RFC 3339 timestamp")
			return
		}
		cmd.NewTime = newTime
	}

	result, err := s.deps.UpdateMeetingHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to update meeting")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handlePrepareMeeting handles POST /api/v1/meetings/{id}/prepare
func (s *Server) handlePrepareMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	if meetingID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Meeting ID is required")
		return
	}

	if s.deps.MeetingPrepSaga == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Meeting preparation not configured")
		return
	}

	input := saga.MeetingPrepInput{
		MeetingID:   meetingID,
		SkipSummary: getQueryParamBool(r, "skip_summary"),
	}

	result, err := s.deps.MeetingPrepSaga.Execute(r.Context(), input)
	if err != nil {
		s.respondError(w, r, err, "failed to prepare meeting")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGenerateSummary handles POST /api/v1/meetings/summary
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if s.deps.GenerateSummaryHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Summary generation not configured")
		return
	}

	var req struct {
		StudentID string `json:"student_id"`
		Notes     string `json:"notes"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.GenerateSummaryCommand{
		StudentID: req.StudentID,
		Notes:     req.Notes,
	}

	result, err := s.deps.GenerateSummaryHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.respondError(w, r, err, "failed to generate summary")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE OVERVIEW HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetGradeOverview handles GET /api/v1/overview/{grade}
func (s *Server) handleGetGradeOverview(w http.ResponseWriter, r *http.Request) {
	grade := r.PathValue("grade")
	if grade == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Grade is required")
		return
	}

	if s.deps.GetGradeOverviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Grade overview not configured")
		return
	}

	q := query.GetGradeOverviewQuery{
		Grade:        grade,
		AcademicYear: getQueryParam(r, "academic_year", ""),
		Refresh:      getQueryParamBool(r, "refresh"),
	}

	result, err := s.deps.GetGradeOverviewHandler.Handle(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, "failed to get grade overview")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body into dst. On failure it writes the
// error response and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

// respondError maps application errors to HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, message string) {
	s.logger.Error(message,
		logger.Err(err),
		logger.String("path", r.URL.Path),
		logger.String("request_id", requestID(r.Context())),
	)

	switch {
	case shared.IsValidation(err):
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "validation_error", message, err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case shared.IsExternalService(err):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", message)
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", message)
	}
}

// parseDate parses a date in RFC 3339 or YYYY-MM-DD form. Unparseable input
// returns the zero time, which commands treat as "now".
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}

// splitFullName splits "First Last" into its parts for the agenda filename.
func splitFullName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return full, ""
}
