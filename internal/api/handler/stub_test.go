package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

type stubDirectory struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.SessionToken, *domain.PublicAccount, error)
	listFn         func(ctx context.Context, in ports.ListAccountsInput) ([]domain.PublicAccount, error)
	getFn          func(ctx context.Context, id int64) (*domain.PublicAccount, error)
	createFn       func(ctx context.Context, in ports.CreateAccountInput) (*domain.PublicAccount, error)
	updateFn       func(ctx context.Context, id int64, in ports.UpdateAccountInput) (*domain.PublicAccount, error)
	deleteFn       func(ctx context.Context, id int64) error
}

func (s *stubDirectory) Register(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error) {
	return s.registerFn(ctx, in)
}

func (s *stubDirectory) Authenticate(ctx context.Context, email, password string) (*domain.SessionToken, *domain.PublicAccount, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubDirectory) ListAccounts(ctx context.Context, in ports.ListAccountsInput) ([]domain.PublicAccount, error) {
	return s.listFn(ctx, in)
}

func (s *stubDirectory) GetAccount(ctx context.Context, id int64) (*domain.PublicAccount, error) {
	return s.getFn(ctx, id)
}

func (s *stubDirectory) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.PublicAccount, error) {
	return s.createFn(ctx, in)
}

func (s *stubDirectory) UpdateAccount(ctx context.Context, id int64, in ports.UpdateAccountInput) (*domain.PublicAccount, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubDirectory) DeleteAccount(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func newJSONContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func sampleAccount(id int64, email string) *domain.PublicAccount {
	return &domain.PublicAccount{ID: id, Name: "Ann", Email: email, Role: domain.RoleUser}
}
