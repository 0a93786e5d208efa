package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/abhicism/dailyplanner/internal/api/middleware"
	"github.com/abhicism/dailyplanner/internal/core/domain"
)

type stubPlannerService struct {
	saved   map[string]string
	saveErr error
	history []domain.DayEntry
}

func (s *stubPlannerService) SaveDay(_ context.Context, _ *domain.User, dateKey string, payload json.RawMessage) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saved == nil {
		s.saved = make(map[string]string)
	}
	s.saved[dateKey] = string(payload)
	return nil
}

func (s *stubPlannerService) GetDay(_ context.Context, _ *domain.User, dateKey string) (*string, error) {
	p, ok := s.saved[dateKey]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *stubPlannerService) History(context.Context, *domain.User) ([]domain.DayEntry, error) {
	return s.history, nil
}

var testUser = &domain.User{ID: 1, Username: "bob"}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyUser, testUser)
	return c
}

func TestDayHandler_SaveDay(t *testing.T) {
	e := newTestEcho()
	stub := &stubPlannerService{}
	handler := NewDayHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/save_day",
		strings.NewReader(`{"date_key":"2024-03-05","payload":{"tasks":["a"]}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := handler.SaveDay(authedContext(e, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := stub.saved["2024-03-05"]; got != `{"tasks":["a"]}` {
		t.Fatalf("unexpected payload passed to service: %s", got)
	}
	if !strings.Contains(rec.Body.String(), `"msg":"saved"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDayHandler_SaveDay_Errors(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"malformed", `{"date_key":`, http.StatusBadRequest},
		{"missing date key", `{"payload":{}}`, http.StatusUnprocessableEntity},
		{"missing payload", `{"date_key":"2024-03-05"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			req := httptest.NewRequest(http.MethodPost, "/save_day", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

			err := NewDayHandler(&stubPlannerService{}).SaveDay(authedContext(e, req, httptest.NewRecorder()))
			if code := httpErrorCode(t, err); code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, code)
			}
		})
	}
}

func TestDayHandler_SaveDay_ServiceError(t *testing.T) {
	e := newTestEcho()
	stub := &stubPlannerService{saveErr: domain.ErrInvalidPayload}

	req := httptest.NewRequest(http.MethodPost, "/save_day", strings.NewReader(`{"date_key":"d","payload":[1]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := NewDayHandler(stub).SaveDay(authedContext(e, req, httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestDayHandler_GetDay(t *testing.T) {
	e := newTestEcho()
	stub := &stubPlannerService{saved: map[string]string{"2024-03-05": `{"a":1}`}}
	handler := NewDayHandler(stub)

	cases := map[string]string{
		"2024-03-05": `{"data":"{\"a\":1}"}`,
		"1999-01-01": `{"data":null}`,
	}
	for key, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/get_day/"+key, nil)
		rec := httptest.NewRecorder()
		c := authedContext(e, req, rec)
		c.SetParamNames("date_key")
		c.SetParamValues(key)

		if err := handler.GetDay(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Fatalf("key %s: expected %s, got %s", key, want, got)
		}
	}
}

func TestDayHandler_GetDay_EscapedKeys(t *testing.T) {
	e := newTestEcho()
	stub := &stubPlannerService{saved: map[string]string{
		"a%41":    `{"n":1}`,
		"50%off":  `{"n":2}`,
		"2024:01": `{"n":3}`,
	}}
	handler := NewDayHandler(stub)
	e.GET("/get_day/:date_key", func(c echo.Context) error {
		c.Set(middleware.ContextKeyUser, testUser)
		return handler.GetDay(c)
	})

	cases := map[string]string{
		"/get_day/a%2541":    `{"data":"{\"n\":1}"}`,
		"/get_day/50%25off":  `{"data":"{\"n\":2}"}`,
		"/get_day/2024%3A01": `{"data":"{\"n\":3}"}`,
		"/get_day/2024:01":   `{"data":"{\"n\":3}"}`,
	}
	for target, want := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", target, rec.Code, rec.Body.String())
		}
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Fatalf("%s: expected %s, got %s", target, want, got)
		}
	}
}

func TestDayHandler_History(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	if err := NewDayHandler(&stubPlannerService{}).History(authedContext(e, httptest.NewRequest(http.MethodGet, "/history", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %s", got)
	}

	stub := &stubPlannerService{history: []domain.DayEntry{{ID: 9, UserID: 1, DateKey: "2024-03-05", Payload: `{}`}}}
	rec = httptest.NewRecorder()
	if err := NewDayHandler(stub).History(authedContext(e, httptest.NewRequest(http.MethodGet, "/history", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(items) != 1 || items[0]["date_key"] != "2024-03-05" || items[0]["payload"] != "{}" {
		t.Fatalf("unexpected items: %v", items)
	}
	if _, leaked := items[0]["user_id"]; leaked {
		t.Fatalf("history must only expose date_key and payload")
	}
}

func TestDayHandler_RequiresUser(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/history", nil), httptest.NewRecorder())

	err := NewDayHandler(&stubPlannerService{}).History(c)
	if code := httpErrorCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
