package service

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/models"
)

type fakeAdminRepo struct {
	admin       *models.Admin
	err         error
	lastLoginAt time.Time
}

func (f *fakeAdminRepo) GetByUsername(username string) (*models.Admin, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.admin == nil || f.admin.Username != username {
		return nil, nil
	}
	return f.admin, nil
}

func (f *fakeAdminRepo) UpdateLastLogin(id uint, at time.Time) error {
	f.lastLoginAt = at
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		AdminJWT: config.JWTConfig{
			SecretKey:   "test-secret-do-not-use",
			ExpireHours: 24,
		},
	}
}

func testAdmin(t *testing.T, password string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.Admin{ID: 1, Username: "admin", PasswordHash: string(hash)}
}

func TestLoginIssuesParsableToken(t *testing.T) {
	repo := &fakeAdminRepo{admin: testAdmin(t, "s3cret")}
	svc := NewAuthService(testAuthConfig(), repo)

	token, expiresAt, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 23*time.Hour {
		t.Fatalf("token expires too soon: %v", remaining)
	}
	if repo.lastLoginAt.IsZero() {
		t.Fatal("last login time was not recorded")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.AdminID != 1 || claims.Username != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), &fakeAdminRepo{admin: testAdmin(t, "s3cret")})
	if _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), &fakeAdminRepo{})
	if _, _, err := svc.Login("ghost", "s3cret"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

func TestParseJWTRejectsForeignSecret(t *testing.T) {
	repo := &fakeAdminRepo{admin: testAdmin(t, "s3cret")}
	svc := NewAuthService(testAuthConfig(), repo)
	token, _, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	otherCfg := testAuthConfig()
	otherCfg.AdminJWT.SecretKey = "another-secret"
	other := NewAuthService(otherCfg, repo)
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), &fakeAdminRepo{})
	if _, err := svc.ParseJWT("not.a.token"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}
