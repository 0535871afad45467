package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/educator-assistant-backend/internal/assistant/executor"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/nlu"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/router"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/state"
	httpH "github.com/yungbote/educator-assistant-backend/internal/http/handlers"
	httpMW "github.com/yungbote/educator-assistant-backend/internal/http/middleware"
	"github.com/yungbote/educator-assistant-backend/internal/services"
	"github.com/yungbote/educator-assistant-backend/internal/services/servicetest"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	stack  *servicetest.Stack
	token  string
}

func newAPI(t *testing.T, debug bool) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := servicetest.New(t)

	classifier, err := nlu.New(nil)
	require.NoError(t, err)
	exec := executor.New(s.Log, executor.Services{
		Students:       s.Students,
		Sections:       s.Sections,
		Grades:         s.Grades,
		Messages:       s.Messages,
		Meetings:       s.Meetings,
		Schedules:      s.Schedules,
		Communications: s.Communications,
		Reports:        s.Reports,
	})
	asst, err := router.New(s.Log, router.Deps{
		Classifier: classifier,
		States:     state.NewMemoryStore(state.DefaultTTL),
		Executor:   exec,
		Students:   s.Students,
		Settings:   s.Settings,
		Turns:      s.TurnRepo,
	})
	require.NoError(t, err)

	engine := NewRouter(RouterConfig{
		Log:                  s.Log,
		AuthMiddleware:       httpMW.NewAuthMiddleware(s.Log, s.Auth, debug),
		AuthHandler:          httpH.NewAuthHandler(s.Auth),
		SectionHandler:       httpH.NewSectionHandler(s.Sections, s.Grades),
		SubjectHandler:       httpH.NewSubjectHandler(s.Subjects),
		StudentHandler:       httpH.NewStudentHandler(s.Students),
		GradeHandler:         httpH.NewGradeHandler(s.Grades),
		ScheduleHandler:      httpH.NewScheduleHandler(s.Schedules),
		MessageHandler:       httpH.NewMessageHandler(s.Messages),
		MeetingHandler:       httpH.NewMeetingHandler(s.Meetings),
		NotificationHandler:  httpH.NewNotificationHandler(s.Notifications),
		CommunicationHandler: httpH.NewCommunicationHandler(s.Communications),
		ReportHandler:        httpH.NewReportHandler(s.Reports),
		AssistantHandler:     httpH.NewAssistantHandler(s.Log, s.Auth, s.Settings, asst),
		HealthHandler:        httpH.NewHealthHandler(s.DB),
	})
	return &apiClient{t: t, engine: engine, stack: s}
}

// login registers a fresh educator through the API and keeps its token.
func (a *apiClient) login(email string) {
	a.t.Helper()
	rec := a.do(nethttp.MethodPost, "/api/v1/auth/register", gin.H{
		"email": email, "password": "correct-horse", "first_name": "Grace", "last_name": "Hopper",
	})
	require.Equal(a.t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(nethttp.MethodPost, "/api/v1/auth/login", gin.H{"email": email, "password": "correct-horse"})
	require.Equal(a.t, nethttp.StatusOK, rec.Code, rec.Body.String())
	a.token = decode(a.t, rec)["access_token"].(string)
	require.NotEmpty(a.t, a.token)
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req)
}

func (a *apiClient) send(req *nethttp.Request) *httptest.ResponseRecorder {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func field(t *testing.T, rec *httptest.ResponseRecorder, key string) map[string]any {
	t.Helper()
	m, ok := decode(t, rec)[key].(map[string]any)
	require.True(t, ok, "missing %q in %s", key, rec.Body.String())
	return m
}

func list(t *testing.T, rec *httptest.ResponseRecorder, key string) []any {
	t.Helper()
	v, ok := decode(t, rec)[key].([]any)
	require.True(t, ok, "missing %q in %s", key, rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return field(t, rec, "error")["code"].(string)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	api := newAPI(t, false)

	rec := api.do(nethttp.MethodGet, "/healthcheck", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = api.do(nethttp.MethodGet, "/metrics", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "educator_http_requests_total")
}

func TestAuthGating(t *testing.T) {
	api := newAPI(t, false)

	rec := api.do(nethttp.MethodGet, "/api/v1/students", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))

	rec = api.do(nethttp.MethodPost, "/api/v1/auth/login", gin.H{"email": "nobody@school.test", "password": "whatever1"})
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	api.login("grace@school.test")
	rec = api.do(nethttp.MethodGet, "/api/v1/me", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "grace@school.test", field(t, rec, "me")["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = api.do(nethttp.MethodPost, "/api/v1/auth/register", gin.H{
		"email": "grace@school.test", "password": "correct-horse", "first_name": "Grace",
	})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
}

func TestDebugModeRunsAsDemoEducator(t *testing.T) {
	api := newAPI(t, true)

	rec := api.do(nethttp.MethodGet, "/api/v1/me", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "demo@educator.test", field(t, rec, "me")["email"])

	rec = api.do(nethttp.MethodPost, "/api/v1/sections", gin.H{"name": "Demo 1"})
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	rec = api.do(nethttp.MethodGet, "/api/v1/sections", nil)
	assert.Len(t, list(t, rec, "sections"), 1)
}

func TestRosterAndGradesCRUD(t *testing.T) {
	api := newAPI(t, false)
	api.login("grace@school.test")

	rec := api.do(nethttp.MethodPost, "/api/v1/sections", gin.H{"name": "Period 3", "grade_level": "7"})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	sectionID := field(t, rec, "section")["id"].(string)

	rec = api.do(nethttp.MethodPut, "/api/v1/sections/"+sectionID, gin.H{"name": "Period 3 Algebra"})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Period 3 Algebra", field(t, rec, "section")["name"])

	rec = api.do(nethttp.MethodPost, "/api/v1/subjects", gin.H{"name": "Math", "code": "MA"})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	subjectID := field(t, rec, "subject")["id"].(string)

	rec = api.do(nethttp.MethodPost, "/api/v1/students", gin.H{
		"section_id": sectionID, "first_name": "Nicole", "last_name": "Smith",
		"guardian_email": "parent.smith@example.com",
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	studentID := field(t, rec, "student")["id"].(string)

	rec = api.do(nethttp.MethodPost, "/api/v1/students", gin.H{"first_name": "", "last_name": "Nobody"})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errorCode(t, rec))

	rec = api.do(nethttp.MethodGet, "/api/v1/students?section_id="+sectionID, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, list(t, rec, "students"), 1)

	rec = api.do(nethttp.MethodPut, "/api/v1/students/"+studentID, gin.H{
		"section_id": sectionID, "first_name": "Nicole", "last_name": "Smith-Ray",
		"guardian_email": "parent.smith@example.com",
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Smith-Ray", field(t, rec, "student")["last_name"])

	for _, score := range []float64{45, 40} {
		rec = api.do(nethttp.MethodPost, "/api/v1/grades", gin.H{
			"student_id": studentID, "subject_id": subjectID, "title": fmt.Sprintf("Quiz %.0f", score),
			"score": score, "max_score": 50,
		})
		require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	}
	gradeID := field(t, rec, "grade")["id"].(string)

	rec = api.do(nethttp.MethodGet, "/api/v1/students/"+studentID+"/grades", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, list(t, rec, "grades"), 2)

	rec = api.do(nethttp.MethodGet, "/api/v1/students/"+studentID+"/grades/summary", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	sum := field(t, rec, "summary")
	assert.InDelta(t, 85.0, sum["average"].(float64), 0.01)
	assert.Equal(t, "B", sum["letter"])

	rec = api.do(nethttp.MethodGet, "/api/v1/sections/"+sectionID+"/gradebook.xlsx", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "period-3-algebra-gradebook.xlsx")
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rec = api.do(nethttp.MethodDelete, "/api/v1/grades/"+gradeID, nil)
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)
	rec = api.do(nethttp.MethodDelete, "/api/v1/grades/"+gradeID, nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec = api.do(nethttp.MethodDelete, "/api/v1/students/"+studentID, nil)
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)
	rec = api.do(nethttp.MethodGet, "/api/v1/students/"+studentID, nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestNotFoundAndBadIDs(t *testing.T) {
	api := newAPI(t, false)
	api.login("grace@school.test")

	missing := "00000000-0000-4000-8000-000000000001"
	for _, path := range []string{
		"/api/v1/students/" + missing,
		"/api/v1/sections/" + missing,
		"/api/v1/students/" + missing + "/grades/summary",
		"/api/v1/reports/students/" + missing + "/performance",
	} {
		rec := api.do(nethttp.MethodGet, path, nil)
		assert.Equal(t, nethttp.StatusNotFound, rec.Code, path)
	}

	rec := api.do(nethttp.MethodGet, "/api/v1/students/not-a-uuid", nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_student_id", errorCode(t, rec))

	rec = api.do(nethttp.MethodPost, "/api/v1/meetings/"+missing+"/cancel", nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestOtherEducatorsRowsAreHidden(t *testing.T) {
	api := newAPI(t, false)
	api.login("grace@school.test")
	rec := api.do(nethttp.MethodPost, "/api/v1/students", gin.H{"first_name": "Marcus", "last_name": "Lee"})
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	studentID := field(t, rec, "student")["id"].(string)

	api.login("alan@school.test")
	rec = api.do(nethttp.MethodGet, "/api/v1/students/"+studentID, nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	rec = api.do(nethttp.MethodGet, "/api/v1/students", nil)
	assert.Empty(t, list(t, rec, "students"))
}

func TestStudentImport(t *testing.T) {
	api := newAPI(t, false)
	api.login("grace@school.test")

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"First Name", "Last Name", "Guardian Email"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]any{"Priya", "Patel", "patel@example.com"}))
	require.NoError(t, book.SetSheetRow(sheet, "A3", &[]any{"Jonathan", "Smithers", "not-an-email"}))
	var xlsx bytes.Buffer
	require.NoError(t, book.Write(&xlsx))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/students/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := api.send(req)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	res := field(t, rec, "import")
	assert.Equal(t, float64(1), res["created"])
	assert.Len(t, res["errors"], 1)

	req = httptest.NewRequest(nethttp.MethodPost, "/api/v1/students/import", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	rec = api.send(req)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_file", errorCode(t, rec))
}

func TestCalendarAndCommunications(t *testing.T) {
	api := newAPI(t, false)
	api.login("grace@school.test")

	rec := api.do(nethttp.MethodPost, "/api/v1/students", gin.H{
		"first_name": "Marcus", "last_name": "Lee", "guardian_email": "lee.parent@example.com",
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	studentID := field(t, rec, "student")["id"].(string)

	// Schedules
	start := time.Now().UTC().Truncate(time.Hour).Add(26 * time.Hour)
	rec = api.do(nethttp.MethodPost, "/api/v1/schedules", gin.H{
		"title": "Algebra", "location": "Room 4", "starts_at": start, "ends_at": start.Add(time.Hour),
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	scheduleID := field(t, rec, "schedule")["id"].(string)

	from := start.Add(-time.Hour).Format(time.RFC3339)
	to := start.Add(2 * time.Hour).Format(time.RFC3339)
	rec = api.do(nethttp.MethodGet, "/api/v1/schedules?from="+from+"&to="+to, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, list(t, rec, "occurrences"), 1)

	rec = api.do(nethttp.MethodGet, "/api/v1/schedules?from=yesterday", nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = api.do(nethttp.MethodGet, "/api/v1/schedules/today", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec = api.do(nethttp.MethodDelete, "/api/v1/schedules/"+scheduleID, nil)
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)

	// Meetings
	rec = api.do(nethttp.MethodPost, "/api/v1/meetings", gin.H{
		"student_id": studentID, "title": "Progress check", "starts_at": start.Add(24 * time.Hour),
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	meetingID := field(t, rec, "meeting")["id"].(string)

	rec = api.do(nethttp.MethodPost, "/api/v1/meetings", gin.H{
		"student_id": studentID, "starts_at": time.Now().Add(-time.Hour),
	})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = api.do(nethttp.MethodPost, "/api/v1/meetings/"+meetingID+"/cancel", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", field(t, rec, "meeting")["status"])

	// Messages
	rec = api.do(nethttp.MethodPost, "/api/v1/messages", gin.H{
		"student_id": studentID, "body": "Great work today", "channel": "email",
	})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	msg := field(t, rec, "message")
	assert.Equal(t, "sent", msg["status"])
	assert.Equal(t, 1, api.stack.Mailer.Count())

	rec = api.do(nethttp.MethodPost, "/api/v1/messages/"+msg["id"].(string)+"/read", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec = api.do(nethttp.MethodGet, "/api/v1/messages?student_id="+studentID, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, list(t, rec, "messages"), 1)

	// Bulk
	rec = api.do(nethttp.MethodPost, "/api/v1/communications/bulk", gin.H{"audience": "all", "body": "Field trip Friday"})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	comm := field(t, rec, "communication")
	assert.Equal(t, float64(1), comm["recipient_count"])
	assert.Equal(t, "sent", comm["status"])

	rec = api.do(nethttp.MethodPost, "/api/v1/communications/bulk", gin.H{"audience": "everyone", "body": "x"})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = api.do(nethttp.MethodGet, "/api/v1/communications/bulk", nil)
	assert.Len(t, list(t, rec, "communications"), 1)

	// Reports
	rec = api.do(nethttp.MethodPost, "/api/v1/reports/students/"+studentID+"/send", nil)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "lee.parent@example.com", field(t, rec, "sent_report")["recipient_email"])

	rec = api.do(nethttp.MethodGet, "/api/v1/reports/sent?student_id="+studentID, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, list(t, rec, "sent_reports"), 1)

	// Notifications raised by the actions above.
	rec = api.do(nethttp.MethodGet, "/api/v1/notifications?unread=true", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	notes := list(t, rec, "notifications")
	require.NotEmpty(t, notes)
	noteID := notes[0].(map[string]any)["id"].(string)
	rec = api.do(nethttp.MethodPost, "/api/v1/notifications/"+noteID+"/read", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	rec = api.do(nethttp.MethodGet, "/api/v1/notifications?unread=true", nil)
	assert.Len(t, list(t, rec, "notifications"), len(notes)-1)
}

func TestAssistantEndpoints(t *testing.T) {
	api := newAPI(t, false)
	api.login("grace@school.test")
	for _, name := range [][2]string{{"Nicole", "Smith"}, {"Marcus", "Lee"}} {
		rec := api.do(nethttp.MethodPost, "/api/v1/students", gin.H{"first_name": name[0], "last_name": name[1]})
		require.Equal(t, nethttp.StatusCreated, rec.Code)
	}

	rec := api.do(nethttp.MethodGet, "/api/v1/assistant/settings", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "assist", decode(t, rec)["mode"])

	rec = api.do(nethttp.MethodPut, "/api/v1/assistant/settings", gin.H{"mode": "reckless"})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	rec = api.do(nethttp.MethodPut, "/api/v1/assistant/settings", gin.H{"mode": "manual"})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = api.do(nethttp.MethodPost, "/api/v1/assistant/chat", gin.H{"message": "list my students"})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	reply := field(t, rec, "reply")
	assert.Contains(t, reply["text"], "You have 2 students")

	rec = api.do(nethttp.MethodPost, "/api/v1/assistant/chat", gin.H{"message": "send a message to Marcus"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "What should the message say?", field(t, rec, "reply")["text"])

	rec = api.do(nethttp.MethodDelete, "/api/v1/assistant/state", nil)
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)

	rec = api.do(nethttp.MethodPost, "/api/v1/assistant/chat", gin.H{"message": ""})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = api.do(nethttp.MethodGet, "/api/v1/assistant/history?limit=10", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, list(t, rec, "turns"), 4)
}

func TestServerShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &Server{Engine: gin.New()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0", time.Second) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

var _ services.Mailer = (*servicetest.Mailer)(nil)
