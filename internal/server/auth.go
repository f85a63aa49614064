// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthConfig controls token issuance and verification. An empty Secret
// disables authentication entirely.
type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Users      map[string]string
}

func (c AuthConfig) enabled() bool { return c.Secret != "" }

// openPaths are reachable without a token.
var openPaths = []string{"/health", "/api/token/"}

// authMiddleware validates bearer access tokens on every route except the
// health check and the token endpoints.
func authMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.enabled() {
				next.ServeHTTP(w, r)
				return
			}
			for _, open := range openPaths {
				if strings.HasPrefix(r.URL.Path, open) {
					next.ServeHTTP(w, r)
					return
				}
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			subject, err := cfg.verify(strings.TrimPrefix(header, "Bearer "), "access")
			if err != nil {
				slog.Debug("rejected token", "path", r.URL.Path, "err", err)
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withSubject(r.Context(), subject)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"` + msg + `"}`))
}

type subjectKey struct{}

func withSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext reports the authenticated username, or empty when the
// request was anonymous.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey{}).(string)
	return subject
}

// issue signs a token of the given use ("access" or "refresh").
func (c AuthConfig) issue(username, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"use": use,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(c.Secret))
}

// verify checks the signature and expiry and that the token was issued for
// the expected use, returning the subject.
func (c AuthConfig) verify(tokenString, use string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(c.Secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["use"] != use {
		return "", jwt.ErrTokenInvalidClaims
	}
	subject, _ := claims["sub"].(string)
	return subject, nil
}

type tokenOutput struct {
	Body struct {
		AccessToken  string `json:"access_token" doc:"Short-lived bearer token"`
		RefreshToken string `json:"refresh_token,omitempty" doc:"Long-lived token for /api/token/refresh/"`
	}
}

type obtainTokenInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" doc:"Username"`
		Password string `json:"password" doc:"Password"`
	}
}

type refreshTokenInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"`
	}
}

func (s *Server) registerTokenRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "obtain-token",
		Method:      http.MethodPost,
		Path:        "/api/token/",
		Summary:     "Obtain access and refresh tokens",
		Tags:        []string{"auth"},
	}, s.handleObtainToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/api/token/refresh/",
		Summary:     "Exchange a refresh token for a new access token",
		Tags:        []string{"auth"},
	}, s.handleRefreshToken)
}

func (s *Server) handleObtainToken(_ context.Context, input *obtainTokenInput) (*tokenOutput, error) {
	cfg := s.cfg.Auth
	if !cfg.enabled() {
		return nil, huma.Error503ServiceUnavailable("authentication is not configured")
	}
	want, ok := cfg.Users[input.Body.Username]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(input.Body.Password)) != 1 {
		return nil, huma.Error403Forbidden("invalid username or password")
	}

	access, err := cfg.issue(input.Body.Username, "access", cfg.AccessTTL)
	if err != nil {
		return nil, huma.Error500InternalServerError("signing token", err)
	}
	refresh, err := cfg.issue(input.Body.Username, "refresh", cfg.RefreshTTL)
	if err != nil {
		return nil, huma.Error500InternalServerError("signing token", err)
	}

	out := &tokenOutput{}
	out.Body.AccessToken = access
	out.Body.RefreshToken = refresh
	return out, nil
}

func (s *Server) handleRefreshToken(_ context.Context, input *refreshTokenInput) (*tokenOutput, error) {
	cfg := s.cfg.Auth
	if !cfg.enabled() {
		return nil, huma.Error503ServiceUnavailable("authentication is not configured")
	}
	subject, err := cfg.verify(input.Body.RefreshToken, "refresh")
	if err != nil {
		return nil, huma.Error403Forbidden("invalid refresh token")
	}
	access, err := cfg.issue(subject, "access", cfg.AccessTTL)
	if err != nil {
		return nil, huma.Error500InternalServerError("signing token", err)
	}
	out := &tokenOutput{}
	out.Body.AccessToken = access
	return out, nil
}
