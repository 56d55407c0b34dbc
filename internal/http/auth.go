package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"iuran/internal/core"
)

type contextKey string

const sessionKey contextKey = "session"

// session is the authenticated caller attached to the request context by
// requireCap. Capabilities are resolved once from the token's role.
type session struct {
	UserID       string
	Username     string
	Capabilities core.CapabilitySet
}

func sessionFrom(ctx context.Context) (session, bool) {
	s, ok := ctx.Value(sessionKey).(session)
	return s, ok
}

// requireCap authenticates the Bearer token and checks the capability
// before the handler runs. Authorization happens on capabilities, never on
// the raw role string.
func (s *Server) requireCap(required core.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := s.auth.Verify(tokenStr)
		if err != nil {
			slog.DebugContext(r.Context(), "Token rejected", "error", err)
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		caps := claims.Capabilities()
		if !caps.Has(required) {
			slog.WarnContext(r.Context(), "Capability denied",
				"username", claims.Username,
				"capability", string(required),
				"path", r.URL.Path)
			writeForbidden(w)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session{
			UserID:       claims.UserID,
			Username:     claims.Username,
			Capabilities: caps,
		})
		next(w, r.WithContext(ctx))
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, sessionDTO{
		Token:        sess.Token,
		Username:     sess.User.Username,
		Role:         string(sess.User.Role),
		Capabilities: capabilityNames(sess.Capabilities),
	})
}

func capabilityNames(set core.CapabilitySet) []string {
	names := make([]string, 0, len(set))
	for c := range set {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}
