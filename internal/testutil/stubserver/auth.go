package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/clouddrive/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const userKey ctxKey = "user"

// IssueToken signs an access token for email that expires after ttl. A
// negative ttl yields an already expired token.
func (s *Server) IssueToken(email string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) subjectFromToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
}

func (s *Server) authenticate(email, password string) (*user, error) {
	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return nil, err
	}
	return u, nil
}

// requireUser resolves the bearer token to a user or answers 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
			writeUnauthorized(w, "Not authenticated")
			return
		}

		email, err := s.subjectFromToken(token)
		if err != nil {
			writeUnauthorized(w, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		u, ok := s.users[email]
		s.mu.Unlock()
		if !ok {
			writeUnauthorized(w, "Could not validate credentials")
			return
		}
		if !u.IsActive {
			writeDetail(w, http.StatusBadRequest, "Inactive user")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func currentUser(ctx context.Context) (*user, error) {
	u, ok := ctx.Value(userKey).(*user)
	if !ok {
		return nil, errors.New("no user in context")
	}
	return u, nil
}
