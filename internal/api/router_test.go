package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/siriphobmean/next-crud/internal/api/handler"
	"github.com/siriphobmean/next-crud/internal/core/ports"
	"github.com/siriphobmean/next-crud/internal/core/service"
	"github.com/siriphobmean/next-crud/internal/infrastructure/auth"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/memory"
)

func newTestRouter(t *testing.T, requireToken bool) *echo.Echo {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := service.NewDirectoryService(
		memory.NewAccountRepository(),
		auth.NewPasswordCodec(bcrypt.MinCost),
		tokens,
		nil,
		zerolog.Nop(),
	)
	reg := prometheus.NewRegistry()
	return NewRouter(Options{
		Directory:         svc,
		Verifier:          tokens,
		Logger:            zerolog.Nop(),
		HealthChecks:      map[string]ports.HealthCheck{"memory": func(context.Context) error { return nil }},
		UsersRequireToken: requireToken,
		Registerer:        reg,
		Gatherer:          reg,
	})
}

type call struct {
	method, path, body, token string
}

func do(t *testing.T, e *echo.Echo, c call) (int, string) {
	t.Helper()
	var req *http.Request
	if c.body != "" {
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	lower := strings.ToLower(body)
	if strings.Contains(lower, "password\"") || strings.Contains(lower, "hash") || strings.Contains(body, "$2a$") {
		t.Fatalf("%s %s leaked credential material: %s", c.method, c.path, body)
	}
	return rec.Code, body
}

func field(t *testing.T, body string, path ...string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("invalid json %q: %v", body, err)
	}
	for _, p := range path {
		m, ok := v.(map[string]any)
		if !ok {
			t.Fatalf("no %q in %s", p, body)
		}
		v = m[p]
	}
	return v
}

func TestRouter_RegisterLoginMe(t *testing.T) {
	e := newTestRouter(t, false)

	code, body := do(t, e, call{method: http.MethodPost, path: "/auth/register", body: `{"name":"A","email":"a@b.co","password":"secret1"}`})
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %s", code, body)
	}
	if field(t, body, "user", "email") != "a@b.co" || field(t, body, "user", "role") != "user" {
		t.Fatalf("unexpected register body: %s", body)
	}

	code, body = do(t, e, call{method: http.MethodPost, path: "/auth/register", body: `{"name":"A","email":"A@B.co","password":"secret1"}`})
	if code != http.StatusBadRequest || field(t, body, "error") != "Email already exists" {
		t.Fatalf("duplicate register: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodPost, path: "/auth/login", body: `{"email":"a@b.co","password":"wrong"}`})
	if code != http.StatusUnauthorized || field(t, body, "error") != "Invalid password" {
		t.Fatalf("wrong password: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodPost, path: "/auth/login", body: `{"email":"ghost@b.co","password":"secret1"}`})
	if code != http.StatusNotFound || field(t, body, "error") != "User not found" {
		t.Fatalf("unknown account: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodPost, path: "/auth/login", body: `{"email":"a@b.co","password":"secret1"}`})
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", code, body)
	}
	token, _ := field(t, body, "token").(string)
	if token == "" {
		t.Fatalf("expected a token: %s", body)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: "/auth/me", token: token})
	if code != http.StatusOK || field(t, body, "user", "email") != "a@b.co" {
		t.Fatalf("me: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: "/auth/me", token: token + "x"})
	if code != http.StatusUnauthorized || field(t, body, "code") != handler.CodeTokenInvalid {
		t.Fatalf("tampered token: got %d %s", code, body)
	}

	code, _ = do(t, e, call{method: http.MethodGet, path: "/auth/me"})
	if code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", code)
	}
}

func TestRouter_UserCRUD(t *testing.T) {
	e := newTestRouter(t, false)

	code, body := do(t, e, call{method: http.MethodPost, path: "/users", body: `{"name":"B","email":"b@b.co","password":"secret1","role":"moderator"}`})
	if code != http.StatusCreated || field(t, body, "role") != "moderator" {
		t.Fatalf("create: got %d %s", code, body)
	}
	id := int(field(t, body, "id").(float64))

	code, body = do(t, e, call{method: http.MethodPost, path: "/users", body: `{"name":"C","email":"c@b.co","password":"123"}`})
	if code != http.StatusBadRequest || field(t, body, "message") != "Password must be at least 6 characters" {
		t.Fatalf("short password: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodPost, path: "/users", body: `{"name":"C","email":"c@b.co","password":"secret1"}`})
	if code != http.StatusCreated || field(t, body, "role") != "user" {
		t.Fatalf("default role: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: "/users"})
	if code != http.StatusOK {
		t.Fatalf("list: got %d %s", code, body)
	}
	var list []map[string]any
	if err := json.Unmarshal([]byte(body), &list); err != nil || len(list) != 2 || list[0]["email"] != "c@b.co" {
		t.Fatalf("expected newest first, got %s", body)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: "/users?role=moderator"})
	if code != http.StatusOK || !strings.Contains(body, "b@b.co") || strings.Contains(body, "c@b.co") {
		t.Fatalf("role filter: got %d %s", code, body)
	}

	path := "/users/" + strconv.Itoa(id)
	code, body = do(t, e, call{method: http.MethodPut, path: path, body: `{"email":"c@b.co"}`})
	if code != http.StatusBadRequest || field(t, body, "message") != "Email already exists" {
		t.Fatalf("update collision: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodPut, path: path, body: `{"name":"Bee","password":""}`})
	if code != http.StatusOK || field(t, body, "name") != "Bee" {
		t.Fatalf("update: got %d %s", code, body)
	}
	code, _ = do(t, e, call{method: http.MethodPost, path: "/auth/login", body: `{"email":"b@b.co","password":"secret1"}`})
	if code != http.StatusOK {
		t.Fatalf("empty password update must keep the old password, login got %d", code)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: "/users/abc"})
	if code != http.StatusBadRequest {
		t.Fatalf("non-numeric id: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodDelete, path: path})
	if code != http.StatusOK || field(t, body, "message") != "Deleted successfully" {
		t.Fatalf("delete: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: path})
	if code != http.StatusNotFound || field(t, body, "error") != "User not found" {
		t.Fatalf("get deleted: got %d %s", code, body)
	}

	code, body = do(t, e, call{method: http.MethodDelete, path: "/users/999"})
	if code != http.StatusNotFound || field(t, body, "message") != "User not found" {
		t.Fatalf("delete missing: got %d %s", code, body)
	}
}

func TestRouter_ConcurrentRegisterSameEmail(t *testing.T) {
	e := newTestRouter(t, false)

	const racers = 5
	codes := make([]int, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _ = do(t, e, call{method: http.MethodPost, path: "/auth/register", body: `{"name":"R","email":"race@b.co","password":"secret1"}`})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one 201, got %d (%v)", created, codes)
	}
}

func TestRouter_UsersRequireToken(t *testing.T) {
	e := newTestRouter(t, true)

	code, _ := do(t, e, call{method: http.MethodGet, path: "/users"})
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", code)
	}

	do(t, e, call{method: http.MethodPost, path: "/auth/register", body: `{"name":"A","email":"a@b.co","password":"secret1"}`})
	_, body := do(t, e, call{method: http.MethodPost, path: "/auth/login", body: `{"email":"a@b.co","password":"secret1"}`})
	token := field(t, body, "token").(string)

	code, _ = do(t, e, call{method: http.MethodGet, path: "/users", token: token})
	if code != http.StatusOK {
		t.Fatalf("expected 200 with a token, got %d", code)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	e := newTestRouter(t, false)

	if code, _ := do(t, e, call{method: http.MethodGet, path: "/health"}); code != http.StatusOK {
		t.Fatalf("health: got %d", code)
	}
	if code, _ := do(t, e, call{method: http.MethodGet, path: "/health/ready"}); code != http.StatusOK {
		t.Fatalf("ready: got %d", code)
	}

	do(t, e, call{method: http.MethodGet, path: "/users"})
	code, body := do(t, e, call{method: http.MethodGet, path: "/metrics"})
	if code != http.StatusOK || !strings.Contains(body, "directory_http_requests_total") {
		t.Fatalf("metrics: got %d, body missing http metrics", code)
	}

	code, body = do(t, e, call{method: http.MethodGet, path: "/nope"})
	if code != http.StatusNotFound || field(t, body, "code") != "NotFound" {
		t.Fatalf("unknown route: got %d %s", code, body)
	}
}
