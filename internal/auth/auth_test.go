package auth

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clientflow/internal/config"
	"clientflow/internal/repository/db"
	"clientflow/internal/testutil"
)

func errNotFound() error {
	return fmt.Errorf("error retrieving user: %w", sql.ErrNoRows)
}

func testService(database db.Database) *Service {
	return NewService(database, config.AuthConfig{
		JWTSecret:       []byte("test-secret-at-least-32-characters!!"),
		TokenExpiration: time.Hour,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService(&testutil.MockDatabase{})

	token, err := svc.GenerateToken("freelancer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "freelancer" {
		t.Errorf("username = %q", claims.Username)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := testService(&testutil.MockDatabase{})
	verifier := NewService(&testutil.MockDatabase{}, config.AuthConfig{
		JWTSecret:       []byte("a-different-secret-32-characters!!!!"),
		TokenExpiration: time.Hour,
	})

	token, err := issuer.GenerateToken("freelancer")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token with wrong secret accepted")
	}
}

func TestMiddleware(t *testing.T) {
	svc := testService(&testutil.MockDatabase{})
	token, err := svc.GenerateToken("freelancer")
	if err != nil {
		t.Fatal(err)
	}

	var gotUsername string
	handler := svc.Middleware(func(w http.ResponseWriter, r *http.Request) {
		gotUsername = r.Context().Value(UserContextKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/quota", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler(w, r)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
	if gotUsername != "freelancer" {
		t.Errorf("context username = %q", gotUsername)
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	database := &testutil.MockDatabase{
		GetUserByUsernameFunc: func(username string) (*db.User, error) {
			if username != "freelancer" {
				return nil, errNotFound()
			}
			return &db.User{ID: "user-1", Username: username, PasswordHash: string(hash)}, nil
		},
	}
	svc := testService(database)

	login := func(username, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
		w := httptest.NewRecorder()
		svc.LoginHandler(w, httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body)))
		return w
	}

	if w := login("freelancer", "hunter22"); w.Code != http.StatusOK {
		t.Errorf("valid login status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := login("freelancer", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", w.Code)
	}
	if w := login("nobody", "hunter22"); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d", w.Code)
	}
}

func TestRegisterHandlerSeedsQuota(t *testing.T) {
	var quotaTier string
	var quotaLimit int
	database := &testutil.MockDatabase{
		CreateUserFunc: func(username, email, passwordHash string) (*db.User, error) {
			return &db.User{ID: "user-1", Username: username, Email: email, PasswordHash: passwordHash}, nil
		},
		CreateQuotaFunc: func(userID, tier string, monthlyLimit int) (*db.Quota, error) {
			quotaTier = tier
			quotaLimit = monthlyLimit
			return &db.Quota{UserID: userID, Tier: tier, MonthlyLimit: monthlyLimit}, nil
		},
	}
	svc := testService(database)

	body, _ := json.Marshal(RegisterRequest{Username: "freelancer", Email: "f@example.com", Password: "hunter22"})
	w := httptest.NewRecorder()
	svc.RegisterHandler(w, httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if quotaTier != "free" || quotaLimit != 25 {
		t.Errorf("seeded quota %q/%d, want free/25", quotaTier, quotaLimit)
	}
}
