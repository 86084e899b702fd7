package auth

import (
	"testing"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPasswordHash("hunter22", hash) {
		t.Error("Expected password to match its hash")
	}
	if CheckPasswordHash("hunter23", hash) {
		t.Error("Expected wrong password not to match")
	}
}

func TestCreateAndVerifyToken(t *testing.T) {
	tokens := NewTokens("test-secret")
	user := &models.User{ID: 7, Username: "mai", EmployeeID: "E-007", Position: models.PositionRider}

	token, err := tokens.CreateToken(user)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	claims, err := tokens.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if !claims.Matches(user) {
		t.Errorf("Expected claims to match user, got %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != TokenTTL {
		t.Errorf("Expected %s lifetime, got %s", TokenTTL, got)
	}

	promoted := *user
	promoted.IsAdmin = true
	if claims.Matches(&promoted) {
		t.Error("Expected claims not to match a promoted user")
	}
}

func TestVerifyToken_Rejects(t *testing.T) {
	user := &models.User{ID: 7, Username: "mai", EmployeeID: "E-007", Position: models.PositionRider}

	other, _ := NewTokens("other-secret").CreateToken(user)
	if _, err := NewTokens("test-secret").VerifyToken(other); err == nil {
		t.Error("Expected token signed with another secret to fail")
	}

	expired := NewTokens("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	old, _ := expired.CreateToken(user)
	if _, err := NewTokens("test-secret").VerifyToken(old); err == nil {
		t.Error("Expected expired token to fail")
	}

	if _, err := NewTokens("test-secret").VerifyToken("not-a-token"); err == nil {
		t.Error("Expected garbage token to fail")
	}
}
