// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/passgate/passgate/internal/auth"
)

// maxBodyBytes caps request bodies; credentials are far smaller.
const maxBodyBytes = 64 << 10

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordChange struct {
	NewPassword string `json:"newPassword"`
}

// decodeBody fills dst from a JSON body or, for form posts, from the
// form fields named by formFields (field name to destination).
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, formFields map[string]*string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return oops.Code(codeMalformedRequest).With("content_type", mediaType).Wrap(err)
		}
		for field, target := range formFields {
			*target = r.PostForm.Get(field)
		}
		return nil
	}

	// An empty body decodes to zero values and fails validation downstream.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return oops.Code(codeMalformedRequest).With("limit", maxErr.Limit).Wrap(err)
		}
		return oops.Code(codeMalformedRequest).With("content_type", mediaType).Wrap(err)
	}
	return nil
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	err := decodeBody(w, r, &c, map[string]*string{"username": &c.Username, "password": &c.Password})
	return c, err
}

func decodePasswordChange(w http.ResponseWriter, r *http.Request) (passwordChange, error) {
	var p passwordChange
	err := decodeBody(w, r, &p, map[string]*string{"newPassword": &p.NewPassword})
	return p, err
}

// sessionToken returns the session cookie value, or "" when absent.
func (a *API) sessionToken(r *http.Request) string {
	c, err := r.Cookie(a.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (a *API) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(a.cookie.TTL / time.Second),
		Secure:   a.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   a.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionMetadata(r *http.Request) auth.SessionMetadata {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return auth.SessionMetadata{UserAgent: r.UserAgent(), IPAddress: ip}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(v)
}
