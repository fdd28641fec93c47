package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"AdPulseAnalytics/api/auth"
	"AdPulseAnalytics/api/constants"
)

type contextKey string

const (
	SessionKey contextKey = "session"
	UserIDKey  contextKey = "user_id"
)

// GetSessionFromCtx returns the authenticated session stashed by
// SessionMiddleware, or nil.
func GetSessionFromCtx(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return session
	}
	return nil
}

func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// ExtractUserID pulls user_id from a JSON body (restoring the body for
// downstream handlers), a form field, or the query string.
func ExtractUserID(r *http.Request) string {
	ct := r.Header.Get(constants.HeaderContentType)
	if strings.HasPrefix(ct, constants.ContentTypeJSON) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err == nil && len(bodyBytes) > 0 {
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			var bodyMap map[string]interface{}
			if err := json.Unmarshal(bodyBytes, &bodyMap); err == nil {
				if uid, ok := bodyMap["user_id"].(string); ok {
					return uid
				}
			}
		}
		return ""
	}
	if uid := r.FormValue("user_id"); uid != "" {
		return uid
	}
	return r.URL.Query().Get("user_id")
}

// FindSession resolves a user_id against the in-process active sessions.
func FindSession(userID string) *auth.UserSession {
	for _, s := range auth.GetActiveSessions() {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

// SessionMiddleware rejects requests whose user_id has no active
// session and stashes the session in the request context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ExtractUserID(r)
		if userID == "" {
			RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}
		session := FindSession(userID)
		if session == nil {
			RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}
		ctx := context.WithValue(r.Context(), SessionKey, session)
		ctx = context.WithValue(ctx, UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
