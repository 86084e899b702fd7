package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an issued token stays valid
const TokenTTL = 24 * time.Hour

// Cost is the bcrypt work factor. Tests lower it.
var Cost = bcrypt.DefaultCost

var jwtAlgorithm = jwt.SigningMethodHS256

// Claims represents the JWT claims
type Claims struct {
	UserID     uint            `json:"userId"`
	IsAdmin    bool            `json:"isAdmin"`
	Position   models.Position `json:"position"`
	Username   string          `json:"username"`
	EmployeeID string          `json:"employeeId"`
	jwt.RegisteredClaims
}

// Matches reports whether the claims still describe the stored user
func (c *Claims) Matches(u *models.User) bool {
	return c.UserID == u.ID &&
		c.IsAdmin == u.IsAdmin &&
		c.Position == u.Position &&
		c.Username == u.Username &&
		c.EmployeeID == u.EmployeeID
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Tokens issues and verifies access tokens
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a token issuer for the given secret
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// CreateToken creates a new JWT token for a user
func (t *Tokens) CreateToken(u *models.User) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID:     u.ID,
		IsAdmin:    u.IsAdmin,
		Position:   u.Position,
		Username:   u.Username,
		EmployeeID: u.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(t.secret)
}

// VerifyToken verifies a JWT token
func (t *Tokens) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.UserID == 0 {
		return nil, errors.New("token has no user")
	}

	return claims, nil
}
