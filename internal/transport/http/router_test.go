package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/auth"
	"quiz-grading-service/internal/infra/memory"
	"quiz-grading-service/internal/notify"

	"github.com/gorilla/websocket"
)

type testEnv struct {
	server *httptest.Server
	auth   *auth.Service
	admin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Telegram endpoint that is never reachable.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	store := memory.NewStore()
	catalog := app.NewCatalogService(store, memory.NewCatalogCache(store, time.Minute))
	settings := app.NewSettingsService(store)
	feed := app.NewFeed()
	attempts := app.NewAttemptService(store, notify.NewDispatcher(store, deadURL, time.Second, ""), feed)

	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	authSvc := auth.NewService("test-secret", "admin", hash, time.Hour)
	admin, err := authSvc.IssueToken("admin", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	router := NewRouter(Handlers{
		Questions:    NewQuestionHandler(catalog),
		Attempts:     NewAttemptHandler(attempts),
		Notification: NewNotificationHandler(settings),
		Auth:         NewAuthHandler(authSvc),
		Feed:         NewWSHandler(feed),
	}, authSvc, nil)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, auth: authSvc, admin: admin}
}

// do sends body as JSON (raw when it is a string) and returns the status and response body.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

// seedQuestion creates Q with options A (correct) and B.
func (e *testEnv) seedQuestion(t *testing.T, text string) adminQuestionView {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/questions", e.admin, map[string]interface{}{
		"text": text,
		"options": []map[string]interface{}{
			{"text": "A", "is_correct": true},
			{"text": "B", "is_correct": false},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create question: %d %s", status, raw)
	}
	return decode[adminQuestionView](t, raw)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	status, raw := env.do(t, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK || string(raw) != "ok" {
		t.Fatalf("unexpected healthz %d %s", status, raw)
	}
}

func TestQuestionProjections(t *testing.T) {
	env := newTestEnv(t)
	q := env.seedQuestion(t, "Q1")
	if len(q.Options) != 2 || !q.Options[0].IsCorrect {
		t.Fatalf("admin view must include correctness, got %+v", q)
	}

	for _, path := range []string{"/api/questions", "/api/questions/", fmt.Sprintf("/api/questions/%d", q.ID)} {
		status, raw := env.do(t, http.MethodGet, path, "", nil)
		if status != http.StatusOK {
			t.Fatalf("GET %s: %d %s", path, status, raw)
		}
		if bytes.Contains(raw, []byte("is_correct")) {
			t.Fatalf("public projection leaked correctness on %s: %s", path, raw)
		}
	}

	status, raw := env.do(t, http.MethodGet, "/api/questions", env.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("admin list: %d %s", status, raw)
	}
	list := decode[[]adminQuestionView](t, raw)
	if len(list) != 1 || !list[0].Options[0].IsCorrect || !bytes.Contains(raw, []byte(`"is_correct":false`)) {
		t.Fatalf("admin projection must include correctness, got %s", raw)
	}

	if status, _ := env.do(t, http.MethodGet, "/api/questions/999", "", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/questions/abc", "", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for a non-numeric id, got %d", status)
	}
}

func TestQuestionWritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"text": "Q", "options": []map[string]interface{}{{"text": "A", "is_correct": true}, {"text": "B"}}}

	if status, _ := env.do(t, http.MethodPost, "/api/questions", "", body); status != http.StatusForbidden {
		t.Fatalf("expected 403 for anonymous write, got %d", status)
	}
	if status, _ := env.do(t, http.MethodPost, "/api/questions", "garbage", body); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", status)
	}
	if status, _ := env.do(t, http.MethodDelete, "/api/questions/1", "", nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for anonymous delete, got %d", status)
	}
}

func TestQuestionValidation(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(t, http.MethodPost, "/api/questions", env.admin, map[string]interface{}{
		"text":    "Q",
		"options": []map[string]interface{}{{"text": "A", "is_correct": true}},
	})
	body := decode[errorBody](t, raw)
	if status != http.StatusBadRequest || body.Field != "options" || body.Rule != "min_options" {
		t.Fatalf("expected min_options, got %d %s", status, raw)
	}

	status, raw = env.do(t, http.MethodPost, "/api/questions", env.admin, map[string]interface{}{
		"text":    "Q",
		"options": []map[string]interface{}{{"text": "A"}, {"text": "B"}},
	})
	body = decode[errorBody](t, raw)
	if status != http.StatusBadRequest || body.Rule != "correct_option" {
		t.Fatalf("expected correct_option, got %d %s", status, raw)
	}

	status, raw = env.do(t, http.MethodPost, "/api/questions", env.admin, map[string]interface{}{
		"options": []map[string]interface{}{{"text": "A", "is_correct": true}, {"text": ""}},
	})
	body = decode[errorBody](t, raw)
	if status != http.StatusBadRequest || body.Fields["text"] != "required" || body.Fields["options[1].text"] != "required" {
		t.Fatalf("expected field errors, got %d %s", status, raw)
	}

	status, raw = env.do(t, http.MethodPost, "/api/questions", env.admin, "{not json")
	body = decode[errorBody](t, raw)
	if status != http.StatusBadRequest || body.Detail != "malformed request body" {
		t.Fatalf("expected malformed body, got %d %s", status, raw)
	}
}

func TestQuestionUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	q := env.seedQuestion(t, "Q1")
	path := fmt.Sprintf("/api/questions/%d", q.ID)

	status, raw := env.do(t, http.MethodPatch, path, env.admin, map[string]interface{}{"text": "Q1 edited"})
	if status != http.StatusOK {
		t.Fatalf("patch: %d %s", status, raw)
	}
	patched := decode[adminQuestionView](t, raw)
	if patched.Text != "Q1 edited" || len(patched.Options) != 2 || patched.Options[0].ID != q.Options[0].ID {
		t.Fatalf("patch must keep options, got %+v", patched)
	}

	status, raw = env.do(t, http.MethodPatch, path, env.admin, map[string]interface{}{"text": ""})
	if status != http.StatusBadRequest {
		t.Fatalf("expected empty text to be rejected, got %d %s", status, raw)
	}

	status, raw = env.do(t, http.MethodPut, path, env.admin, map[string]interface{}{
		"text":    "Q1 replaced",
		"options": []map[string]interface{}{{"text": "X"}, {"text": "Y", "is_correct": true}, {"text": "Z"}},
	})
	if status != http.StatusOK {
		t.Fatalf("put: %d %s", status, raw)
	}
	replaced := decode[adminQuestionView](t, raw)
	if replaced.Text != "Q1 replaced" || len(replaced.Options) != 3 || !replaced.Options[1].IsCorrect {
		t.Fatalf("unexpected replace result %+v", replaced)
	}

	if status, _ := env.do(t, http.MethodPut, "/api/questions/999", env.admin, map[string]interface{}{
		"text":    "missing",
		"options": []map[string]interface{}{{"text": "X", "is_correct": true}, {"text": "Y"}},
	}); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}

	if status, raw := env.do(t, http.MethodDelete, path, env.admin, nil); status != http.StatusNoContent {
		t.Fatalf("delete: %d %s", status, raw)
	}
	if status, _ := env.do(t, http.MethodGet, path, "", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
	if status, _ := env.do(t, http.MethodDelete, path, env.admin, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
}

func TestSubmitAttempt(t *testing.T) {
	env := newTestEnv(t)
	q1 := env.seedQuestion(t, "Q1")
	q2 := env.seedQuestion(t, "Q2")

	// Active, complete settings pointing at an unreachable Bot API.
	if status, raw := env.do(t, http.MethodPut, "/api/notification", env.admin, map[string]interface{}{
		"bot_token": "123:abc", "admin_chat_id": "42", "is_active": true,
	}); status != http.StatusOK {
		t.Fatalf("settings: %d %s", status, raw)
	}

	status, raw := env.do(t, http.MethodPost, "/api/attempts/", "", map[string]interface{}{
		"first_name": "Ali",
		"last_name":  "Valiyev",
		"responses":  []map[string]int64{{"question": q1.ID, "option": q1.Options[0].ID}},
	})
	if status != http.StatusCreated {
		t.Fatalf("submit: %d %s", status, raw)
	}
	attempt := decode[attemptView](t, raw)
	if attempt.TotalQuestions != 1 || attempt.CorrectAnswers != 1 || attempt.IncorrectAnswers != 0 {
		t.Fatalf("unexpected counters %+v", attempt)
	}
	if len(attempt.Answers) != 1 || attempt.Answers[0].QuestionText != "Q1" || attempt.Answers[0].OptionText != "A" || !attempt.Answers[0].IsCorrect {
		t.Fatalf("unexpected answers %+v", attempt.Answers)
	}

	cases := []struct {
		name   string
		body   interface{}
		detail string
	}{
		{
			name:   "empty responses",
			body:   map[string]interface{}{"first_name": "A", "last_name": "B", "responses": []interface{}{}},
			detail: "responses must not be empty",
		},
		{
			name: "foreign option",
			body: map[string]interface{}{"first_name": "A", "last_name": "B", "responses": []map[string]int64{
				{"question": q1.ID, "option": q2.Options[0].ID},
			}},
			detail: "option does not belong to question",
		},
		{
			name: "unknown question",
			body: map[string]interface{}{"first_name": "A", "last_name": "B", "responses": []map[string]int64{
				{"question": 999, "option": q1.Options[0].ID},
			}},
			detail: "question not found",
		},
		{
			name: "unknown option",
			body: map[string]interface{}{"first_name": "A", "last_name": "B", "responses": []map[string]int64{
				{"question": q1.ID, "option": 999},
			}},
			detail: "option not found",
		},
	}
	for _, tc := range cases {
		status, raw := env.do(t, http.MethodPost, "/api/attempts", "", tc.body)
		body := decode[errorBody](t, raw)
		if status != http.StatusBadRequest || body.Detail != tc.detail {
			t.Fatalf("%s: expected 400 %q, got %d %s", tc.name, tc.detail, status, raw)
		}
	}

	status, raw = env.do(t, http.MethodPost, "/api/attempts", "", map[string]interface{}{
		"last_name": strings.Repeat("x", 121),
		"responses": []map[string]int64{{"question": 0, "option": 1}},
	})
	body := decode[errorBody](t, raw)
	if status != http.StatusBadRequest || body.Fields["first_name"] != "required" || body.Fields["last_name"] != "max" || body.Fields["responses[0].question"] != "required" {
		t.Fatalf("expected shape errors, got %d %s", status, raw)
	}

	status, raw = env.do(t, http.MethodGet, "/api/attempts", env.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %s", status, raw)
	}
	if list := decode[[]attemptView](t, raw); len(list) != 1 || list[0].ID != attempt.ID {
		t.Fatalf("only the valid submission must be stored, got %s", raw)
	}
}

func TestSubmitAttemptNames(t *testing.T) {
	env := newTestEnv(t)
	q := env.seedQuestion(t, "Q1")
	responses := []map[string]int64{{"question": q.ID, "option": q.Options[0].ID}}

	status, raw := env.do(t, http.MethodPost, "/api/attempts", "", map[string]interface{}{
		"first_name": "   ",
		"last_name":  "\t",
		"responses":  responses,
	})
	body := decode[errorBody](t, raw)
	if status != http.StatusBadRequest || body.Fields["first_name"] != "notblank" || body.Fields["last_name"] != "notblank" {
		t.Fatalf("expected blank names to be rejected, got %d %s", status, raw)
	}

	status, raw = env.do(t, http.MethodPost, "/api/attempts", "", map[string]interface{}{
		"first_name": "  Ali ",
		"last_name":  " Valiyev",
		"responses":  responses,
	})
	if status != http.StatusCreated {
		t.Fatalf("submit: %d %s", status, raw)
	}
	attempt := decode[attemptView](t, raw)
	if attempt.FirstName != "Ali" || attempt.LastName != "Valiyev" {
		t.Fatalf("expected trimmed names, got %q %q", attempt.FirstName, attempt.LastName)
	}
}

func TestAttemptListingRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	q := env.seedQuestion(t, "Q1")

	for i := 0; i < 3; i++ {
		if status, raw := env.do(t, http.MethodPost, "/api/attempts", "", map[string]interface{}{
			"first_name": "Ali", "last_name": "Valiyev",
			"responses": []map[string]int64{{"question": q.ID, "option": q.Options[1].ID}},
		}); status != http.StatusCreated {
			t.Fatalf("submit: %d %s", status, raw)
		}
	}

	if status, _ := env.do(t, http.MethodGet, "/api/attempts", "", nil); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	status, raw := env.do(t, http.MethodGet, "/api/attempts?limit=2", env.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %s", status, raw)
	}
	list := decode[[]attemptView](t, raw)
	if len(list) != 2 || list[0].ID < list[1].ID {
		t.Fatalf("expected two newest attempts, got %s", raw)
	}

	status, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/attempts/%d", list[0].ID), env.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("get: %d %s", status, raw)
	}
	if got := decode[attemptView](t, raw); got.IncorrectAnswers != 1 || got.Answers[0].OptionText != "B" {
		t.Fatalf("unexpected attempt %s", raw)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/attempts/999", env.admin, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestNotificationSettings(t *testing.T) {
	env := newTestEnv(t)

	if status, _ := env.do(t, http.MethodGet, "/api/notification", "", nil); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}

	status, raw := env.do(t, http.MethodGet, "/api/notification", env.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("get: %d %s", status, raw)
	}
	if got := decode[settingView](t, raw); got != (settingView{}) {
		t.Fatalf("expected empty settings, got %+v", got)
	}

	if status, raw := env.do(t, http.MethodPut, "/api/notification", env.admin, map[string]interface{}{"bot_token": "123:abc"}); status != http.StatusOK {
		t.Fatalf("put: %d %s", status, raw)
	}
	status, raw = env.do(t, http.MethodPost, "/api/notification/", env.admin, map[string]interface{}{"admin_chat_id": "42", "is_active": true})
	if status != http.StatusOK {
		t.Fatalf("post: %d %s", status, raw)
	}
	want := settingView{BotToken: "123:abc", AdminChatID: "42", IsActive: true}
	if got := decode[settingView](t, raw); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	status, raw = env.do(t, http.MethodPut, "/api/notification", env.admin, map[string]interface{}{"admin_chat_id": strings.Repeat("9", 101)})
	if status != http.StatusBadRequest {
		t.Fatalf("expected oversized chat id to be rejected, got %d %s", status, raw)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "s3cret"})
	if status != http.StatusOK {
		t.Fatalf("login: %d %s", status, raw)
	}
	token := decode[tokenResponse](t, raw).AccessToken
	if status, _ := env.do(t, http.MethodGet, "/api/attempts", token, nil); status != http.StatusOK {
		t.Fatalf("issued token must grant admin access, got %d", status)
	}

	if status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope"}); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestAttemptFeedWebSocket(t *testing.T) {
	env := newTestEnv(t)
	q := env.seedQuestion(t, "Q1")
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/ws/attempts"

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected anonymous dial to be rejected with 403")
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+env.admin, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect subscribed event first.
	if typ, _ := readNext(t, conn); typ != "subscribed" {
		t.Fatalf("expected subscribed, got %s", typ)
	}

	status, raw := env.do(t, http.MethodPost, "/api/attempts", "", map[string]interface{}{
		"first_name": "Ali", "last_name": "Valiyev",
		"responses": []map[string]int64{{"question": q.ID, "option": q.Options[0].ID}},
	})
	if status != http.StatusCreated {
		t.Fatalf("submit: %d %s", status, raw)
	}
	submitted := decode[attemptView](t, raw)

	typ, payload := readNext(t, conn)
	if typ != "attempt" {
		t.Fatalf("expected attempt, got %s", typ)
	}
	got := decode[attemptView](t, payload)
	if got.ID != submitted.ID || got.CorrectAnswers != 1 {
		t.Fatalf("unexpected feed payload %s", payload)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}
