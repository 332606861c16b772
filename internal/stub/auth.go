package stub

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CookieName is the HttpOnly session cookie the backend sets on login.
const CookieName = "access_token"

type contextKey int

const customerIDKey contextKey = iota

// CustomerIDFromContext extracts the authenticated customer id from the
// request context.
func CustomerIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(customerIDKey).(string); ok {
		return v
	}
	return ""
}

// mintToken signs customerID and an expiry into an opaque cookie value.
func mintToken(secret, customerID string, expiry time.Time) string {
	payload := customerID + "|" + strconv.FormatInt(expiry.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + hex.EncodeToString(mac.Sum(nil))
}

// parseToken validates the signature and expiry and returns the customer id.
func parseToken(secret, token string) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", fmt.Errorf("malformed token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode token payload: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", fmt.Errorf("invalid token signature")
	}

	customerID, expStr, ok := strings.Cut(string(payload), "|")
	if !ok || customerID == "" {
		return "", fmt.Errorf("malformed token payload")
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed token expiry: %w", err)
	}
	if time.Now().Unix() >= exp {
		return "", errTokenExpired
	}
	return customerID, nil
}

var errTokenExpired = fmt.Errorf("token expired")

func (s *Server) setSessionCookie(w http.ResponseWriter, customerID string) {
	expiry := time.Now().Add(s.cfg.SessionTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    mintToken(s.cfg.CookieSecret, customerID, expiry),
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		Expires:  expiry,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   !s.cfg.IsDevelopment(),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   !s.cfg.IsDevelopment(),
	})
}

// requireCustomer validates the session cookie and injects the customer id
// into the request context. Failures mirror the production 401 bodies.
func (s *Server) requireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			Error(w, http.StatusUnauthorized, "Not authenticated - no token cookie found")
			return
		}

		customerID, err := parseToken(s.cfg.CookieSecret, cookie.Value)
		if err == errTokenExpired {
			Error(w, http.StatusUnauthorized, "Token has expired")
			return
		}
		if err != nil {
			Error(w, http.StatusUnauthorized, "Invalid authentication credentials")
			return
		}

		exists, err := s.repo.CustomerExists(r.Context(), customerID)
		if err != nil {
			Error(w, http.StatusInternalServerError, "customer lookup failed")
			return
		}
		if !exists {
			Error(w, http.StatusUnauthorized, "Customer access revoked")
			return
		}

		ctx := context.WithValue(r.Context(), customerIDKey, customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
