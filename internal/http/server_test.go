package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"iuran/internal/auth"
	"iuran/internal/core"
	"iuran/internal/ledger"
	"iuran/internal/memory"
	"iuran/internal/middleware/ratelimit"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testEnv bundles a server wired to the in-memory store with one logged-in
// token per role.
type testEnv struct {
	server *Server
	store  *memory.Store

	adminToken    string
	pengurusToken string
	wargaToken    string

	residentID string
	typeID     string
	period     core.Period
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	authSvc := auth.NewService(store, testSecret, time.Hour)

	srv := NewServer(":0", Deps{
		Stats:    ledger.NewStatsService(store, store, store, store),
		Matrix:   ledger.NewMatrixService(store, store, store),
		Expenses: ledger.NewExpenseService(store, nil),
		Payments: ledger.NewPaymentService(store, nil),
		Store:    store,
		Auth:     authSvc,
	})
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	env := &testEnv{server: srv, store: store, period: core.Period{Month: 5, Year: 2024}}

	env.adminToken = makeUser(t, store, authSvc, "admin", core.RoleAdmin)
	env.pengurusToken = makeUser(t, store, authSvc, "bendahara", core.RolePengurus)
	env.wargaToken = makeUser(t, store, authSvc, "warga01", core.RoleWarga)

	resident, err := store.CreateResident(ctx, core.Resident{HouseBlock: "A-01", Name: "Andi"})
	if err != nil {
		t.Fatalf("seed resident: %v", err)
	}
	env.residentID = resident.ID

	ctype, err := store.CreateContributionType(ctx, core.ContributionType{
		Name:    "Iuran Sampah",
		Nominal: core.Money{Cents: 2_500_000},
	})
	if err != nil {
		t.Fatalf("seed contribution type: %v", err)
	}
	env.typeID = ctype.ID

	return env
}

func makeUser(t *testing.T, store *memory.Store, authSvc *auth.Service, username string, role core.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(username+"-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := store.CreateUser(context.Background(), core.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	sess, err := authSvc.Login(context.Background(), username, username+"-password")
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return sess.Token
}

// seedVerifiedPayment writes a verified payment directly into the store so
// read endpoints have income to report.
func (env *testEnv) seedVerifiedPayment(t *testing.T, cents int64) {
	t.Helper()
	ctx := context.Background()
	pay, err := env.store.CreatePayment(ctx, core.DuesPayment{
		ResidentID:         env.residentID,
		ContributionTypeID: env.typeID,
		Amount:             core.Money{Cents: cents},
		PaidAt:             time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		Month:              env.period.Month,
		Year:               env.period.Year,
		Status:             core.VerificationPending,
	})
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if _, err := env.store.VerifyPayment(ctx, pay.ID, "seed"); err != nil {
		t.Fatalf("verify seeded payment: %v", err)
	}
}

type responseEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
	Meta  *meta           `json:"meta"`
}

func (env *testEnv) do(t *testing.T, method, target, token string, body any) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.Server.Handler.ServeHTTP(rec, req)

	var envl responseEnvelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rec.Body.Bytes(), &envl); err != nil {
			t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, envl
}

func decodeData[T any](t *testing.T, envl responseEnvelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(envl.Data, &out); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, envl.Data)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}

	rec, _ = env.do(t, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on responses")
	}
}

func TestReadyzStoreDown(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailWith(core.ErrStoreUnavailable)

	rec, _ := env.do(t, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.do(t, http.MethodPost, "/api/v1/login", "", loginRequest{
		Username: "bendahara",
		Password: "bendahara-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	sess := decodeData[sessionDTO](t, envl)
	if sess.Token == "" {
		t.Error("expected a token")
	}
	if sess.Role != string(core.RolePengurus) {
		t.Errorf("role = %q, want pengurus", sess.Role)
	}
	want := []string{string(core.CapSubmitExpense), string(core.CapViewLedger)}
	if len(sess.Capabilities) != len(want) {
		t.Fatalf("capabilities = %v, want %v", sess.Capabilities, want)
	}
	for i, c := range want {
		if sess.Capabilities[i] != c {
			t.Errorf("capabilities[%d] = %q, want %q", i, sess.Capabilities[i], c)
		}
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec, envl := env.do(t, http.MethodPost, "/api/v1/login", "", loginRequest{
		Username: "admin",
		Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if envl.Error == nil || envl.Error.Code != "invalid_credentials" {
		t.Fatalf("error = %+v, want invalid_credentials", envl.Error)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/stats", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/stats", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestCapabilityEnforcement(t *testing.T) {
	env := newTestEnv(t)

	// Residents may look but not touch.
	rec, _ := env.do(t, http.MethodGet, "/api/v1/stats?month=5&year=2024", env.wargaToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("warga read: status = %d, want 200", rec.Code)
	}

	rec, envl := env.do(t, http.MethodPost, "/api/v1/expenses", env.wargaToken, submitExpenseRequest{})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("warga submit: status = %d, want 403", rec.Code)
	}
	if envl.Error == nil || envl.Error.Code != "forbidden" {
		t.Fatalf("error = %+v, want forbidden", envl.Error)
	}

	// Committee members submit but do not decide.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/expenses/some-id/decision", env.pengurusToken, decisionRequest{Decision: "approved"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pengurus decide: status = %d, want 403", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/v1/settings", env.pengurusToken, putSettingsRequest{Settings: map[string]string{"k": "v"}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pengurus settings: status = %d, want 403", rec.Code)
	}
}

func TestWriteRateLimit(t *testing.T) {
	env := newTestEnv(t)
	// Tighten the limiter so the test does not need 60 requests.
	env.server.limiter.Stop()
	env.server.limiter = newTightLimiter()

	var last int
	for i := 0; i < 4; i++ {
		rec, _ := env.do(t, http.MethodPost, "/api/v1/login", "", loginRequest{Username: "admin", Password: "wrong"})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", last)
	}
}

func newTightLimiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: 3,
		CleanupInterval:   time.Minute,
	})
}
