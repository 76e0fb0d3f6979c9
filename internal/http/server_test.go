package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finchat/internal/compose"
	"finchat/internal/core"
	"finchat/internal/facts"
	"finchat/internal/ledger/memory"
	"finchat/internal/services"
)

type fakeAnswerer struct {
	answer services.Answer
	err    error
	block  bool
}

func (f fakeAnswerer) Answer(ctx context.Context, userID, message string) (services.Answer, error) {
	if f.block {
		<-ctx.Done()
		return services.Answer{}, ctx.Err()
	}
	return f.answer, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(t *testing.T, chat Answerer, opts Options) *Server {
	t.Helper()
	srv := NewServer(":0", chat, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func chatService() *services.ChatService {
	now := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
	store := memory.New()
	store.PutProfile(core.UserProfile{UserID: "u1", MonthlyBudget: decimal.NewFromInt(1000)})
	store.AddTransaction("u1", core.Transaction{Amount: decimal.NewFromInt(-260), Date: now})
	engine := facts.NewEngine(store,
		facts.WithClock(func() time.Time { return now }),
		facts.WithLocation(time.UTC))
	return services.NewChatService(engine, compose.New("₹"), nil, nil)
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	return postChatAs(t, srv, "application/json", body)
}

func postChatAs(t *testing.T, srv *Server, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRootBanner(t *testing.T) {
	srv := newTestServer(t, fakeAnswerer{}, Options{})
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if rr.Body.String() != "AI Finance Chatbot Backend OK" {
		t.Fatalf("body: got %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type: got %q", ct)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestChatDeterministicAnswer(t *testing.T) {
	srv := newTestServer(t, chatService(), Options{})
	rr := postChat(t, srv, `{"userId":"u1","message":"How much left this month?"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rr.Code, rr.Body.String())
	}
	got := decodeBody(t, rr)
	want := "You have ₹740 left out of ₹1000 this month. You've spent ₹260."
	if got["answer"] != want {
		t.Fatalf("answer: got %q want %q", got["answer"], want)
	}
}

func TestChatValidation(t *testing.T) {
	srv := newTestServer(t, chatService(), Options{})

	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     string
	}{
		{"missing user", "application/json", `{"message":"hi"}`, "userId and message required"},
		{"missing message", "application/json", `{"userId":"u1"}`, "userId and message required"},
		{"blank message", "application/json", `{"userId":"u1","message":"   "}`, "userId and message required"},
		{"empty body", "application/json", ``, "userId and message required"},
		{"no content type", "", ``, "userId and message required"},
		{"form body", "application/x-www-form-urlencoded", `userId=u1&message=hi`, "userId and message required"},
		{"json charset", "application/json; charset=utf-8", `{"userId":"u1"}`, "userId and message required"},
		{"malformed json", "application/json", `{"userId":`, "invalid request body"},
		{"wrong type", "application/json", `{"userId":42,"message":"hi"}`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postChatAs(t, srv, tt.contentType, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d", rr.Code)
			}
			got := decodeBody(t, rr)
			if got["error"] != tt.wantErr {
				t.Fatalf("error: got %q want %q", got["error"], tt.wantErr)
			}
			if got["code"] != core.CodeValidation {
				t.Fatalf("code: got %q", got["code"])
			}
		})
	}
}

func TestChatServerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"configuration", fmt.Errorf("%w: no key", core.ErrConfiguration), core.CodeConfiguration},
		{"upstream", fmt.Errorf("%w: LLM error: boom", core.ErrUpstream), core.CodeUpstream},
		{"store", fmt.Errorf("%w: read profile: disk", core.ErrStoreUnavailable), core.CodeStoreUnavailable},
		{"unknown", errors.New("something odd"), core.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, fakeAnswerer{err: tt.err}, Options{})
			rr := postChat(t, srv, `{"userId":"u1","message":"should I buy a bike?"}`)

			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status: got %d", rr.Code)
			}
			got := decodeBody(t, rr)
			if got["error"] != "Server error" {
				t.Fatalf("error: got %q", got["error"])
			}
			if got["details"] != tt.err.Error() {
				t.Fatalf("details: got %q want %q", got["details"], tt.err.Error())
			}
			if got["code"] != tt.wantCode {
				t.Fatalf("code: got %q want %q", got["code"], tt.wantCode)
			}
		})
	}
}

func TestChatRequestTimeout(t *testing.T) {
	srv := newTestServer(t, fakeAnswerer{block: true}, Options{RequestTimeout: 20 * time.Millisecond})
	rr := postChat(t, srv, `{"userId":"u1","message":"anything"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	if got := decodeBody(t, rr); got["code"] != core.CodeTimeout {
		t.Fatalf("code: got %q", got["code"])
	}
}

func TestChatRateLimited(t *testing.T) {
	srv := newTestServer(t, fakeAnswerer{answer: services.Answer{Text: "ok"}}, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rr := postChat(t, srv, `{"userId":"u1","message":"hi"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rr.Code)
		}
	}
	rr := postChat(t, srv, `{"userId":"u1","message":"hi"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status: got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if got := decodeBody(t, rr); got["code"] != "rate_limited" {
		t.Fatalf("code: got %q", got["code"])
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, fakeAnswerer{}, Options{})
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("expected Access-Control-Allow-Origin header")
	}
}

func TestHealthAndReadiness(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ready      *fakePinger
		wantStatus int
	}{
		{"health", "/healthz", nil, http.StatusOK},
		{"ready without pinger", "/readyz", nil, http.StatusOK},
		{"ready store up", "/readyz", &fakePinger{}, http.StatusOK},
		{"ready store down", "/readyz", &fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{}
			if tt.ready != nil {
				opts.Ready = tt.ready
			}
			srv := newTestServer(t, fakeAnswerer{}, opts)
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantStatus {
				body, _ := io.ReadAll(rr.Body)
				t.Fatalf("status: got %d want %d (%s)", rr.Code, tt.wantStatus, body)
			}
		})
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := NewServer(":0", fakeAnswerer{}, Options{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
