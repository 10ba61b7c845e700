package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/models"
	"github.com/askpeer/askpeer-be/internal/services"
)

type stubUsers struct {
	services.UserServiceProvider
}

func (s *stubUsers) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	if email == "alice@example.com" && password == "s3cret-pass" {
		return models.User{ID: 5, Username: "alice", Email: email}, nil
	}
	return models.User{}, models.ErrUnauthenticated
}

// memQuestions is an in-memory QuestionServiceProvider with real ownership
// semantics, so route-level tests exercise the same status mapping as the
// SQL-backed service.
type memQuestions struct {
	questions map[int64]models.Question
	nextID    int64
}

func newMemQuestions() *memQuestions {
	return &memQuestions{questions: make(map[int64]models.Question), nextID: 1}
}

func (m *memQuestions) GetAllQuestions(ctx context.Context) ([]models.Question, error) {
	out := make([]models.Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	return out, nil
}

func (m *memQuestions) GetQuestion(ctx context.Context, id int64) (models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return models.Question{}, models.ErrNotFound
	}
	return q, nil
}

func (m *memQuestions) CreateQuestion(ctx context.Context, userID int64, title, description string, tag *string) (int64, error) {
	id := m.nextID
	m.nextID++
	m.questions[id] = models.Question{ID: id, UserID: userID, Title: title, Description: description, Tag: tag}
	return id, nil
}

func (m *memQuestions) UpdateQuestion(ctx context.Context, id, callerID int64, title, description string, tag *string) error {
	q, ok := m.questions[id]
	if !ok {
		return models.ErrNotFound
	}
	if q.UserID != callerID {
		return models.ErrForbidden
	}
	q.Title, q.Description, q.Tag = title, description, tag
	m.questions[id] = q
	return nil
}

func (m *memQuestions) DeleteQuestion(ctx context.Context, id, callerID int64) error {
	q, ok := m.questions[id]
	if !ok {
		return models.ErrNotFound
	}
	if q.UserID != callerID {
		return models.ErrForbidden
	}
	delete(m.questions, id)
	return nil
}

type stubAnswers struct {
	services.AnswerServiceProvider
}

type stubSummaries struct {
	result services.AnswerSummary
	err    error
	calls  int
}

func (s *stubSummaries) SummarizeAnswers(ctx context.Context, questionID int64) (services.AnswerSummary, error) {
	s.calls++
	return s.result, s.err
}

type stubChat struct {
	respondCalls int
	history      []models.ChatTurn
}

func (s *stubChat) Respond(ctx context.Context, userID int64, userText string) (string, error) {
	s.respondCalls++
	return "echo: " + userText, nil
}

func (s *stubChat) History(ctx context.Context, userID int64) ([]models.ChatTurn, error) {
	return s.history, nil
}

type routerFixture struct {
	handler   http.Handler
	tokens    *auth.TokenService
	questions *memQuestions
	summaries *stubSummaries
	chat      *stubChat
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		tokens:    auth.NewTokenService("route-test-secret", time.Hour),
		questions: newMemQuestions(),
		summaries: &stubSummaries{},
		chat:      &stubChat{},
	}
	f.handler = NewRouter(f.tokens, &stubUsers{}, f.questions, &stubAnswers{}, f.summaries, f.chat)
	return f
}

func (f *routerFixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) tokenFor(t *testing.T, userID int64, username string) string {
	t.Helper()
	token, err := f.tokens.Generate(userID, username)
	require.NoError(t, err)
	return token
}

func TestGuardedRoutesRejectMissingToken(t *testing.T) {
	f := newRouterFixture(t)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/question/"},
		{http.MethodPost, "/question/"},
		{http.MethodPost, "/chat/"},
		{http.MethodGet, "/chat/history"},
		{http.MethodGet, "/user/check"},
	} {
		rec := f.request(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}

	// Rejected requests never reach the services.
	assert.Zero(t, f.chat.respondCalls)
	assert.Empty(t, f.questions.questions)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/user/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	check := f.request(t, http.MethodGet, "/user/check", login.Token, nil)
	require.Equal(t, http.StatusOK, check.Code)

	var claims struct {
		Username string `json:"username"`
		UserID   int64  `json:"userid"`
	}
	require.NoError(t, json.Unmarshal(check.Body.Bytes(), &claims))
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, int64(5), claims.UserID)
}

func TestLoginBadCredentials(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/user/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A missing question and a foreign question fail differently: 404 before 403.
func TestQuestionOwnershipStatuses(t *testing.T) {
	f := newRouterFixture(t)
	owner := f.tokenFor(t, 5, "alice")
	other := f.tokenFor(t, 6, "bob")

	created := f.request(t, http.MethodPost, "/question/", owner, map[string]string{
		"title":       "How do I center a div",
		"description": "I tried margin auto",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var body struct {
		QuestionID int64 `json:"questionId"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &body))

	edit := map[string]string{"title": "edited", "description": "edited"}
	path := fmt.Sprintf("/question/%d", body.QuestionID)

	missing := f.request(t, http.MethodPut, "/question/9999", other, edit)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	forbidden := f.request(t, http.MethodPut, path, other, edit)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	allowed := f.request(t, http.MethodPut, path, owner, edit)
	assert.Equal(t, http.StatusOK, allowed.Code)
}

func TestCreateQuestionValidation(t *testing.T) {
	f := newRouterFixture(t)
	token := f.tokenFor(t, 5, "alice")

	rec := f.request(t, http.MethodPost, "/question/", token, map[string]string{
		"description": "no title here",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.questions.questions)
}

func TestChatRoutes(t *testing.T) {
	f := newRouterFixture(t)
	token := f.tokenFor(t, 5, "alice")

	rec := f.request(t, http.MethodPost, "/chat/", token, map[string]string{"prompt": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var reply struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "echo: hello", reply.Answer)
	assert.Equal(t, 1, f.chat.respondCalls)

	empty := f.request(t, http.MethodPost, "/chat/", token, map[string]string{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, empty.Code)
	assert.Equal(t, 1, f.chat.respondCalls)

	history := f.request(t, http.MethodGet, "/chat/history", token, nil)
	require.Equal(t, http.StatusOK, history.Code)

	var hist struct {
		History []models.ChatTurn `json:"history"`
	}
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &hist))
	assert.NotNil(t, hist.History)
}

func TestAnswerSummaryRoute(t *testing.T) {
	f := newRouterFixture(t)
	f.summaries.result = services.AnswerSummary{Summary: "use flexbox", AnswerCount: 2}
	token := f.tokenFor(t, 5, "alice")

	rec := f.request(t, http.MethodGet, "/answer/3/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary services.AnswerSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "use flexbox", summary.Summary)
	assert.Equal(t, 2, summary.AnswerCount)
	assert.Equal(t, 1, f.summaries.calls)
}
