package middleware

import (
	"FileVault/internal/model"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName — имя cookie с подписанной сессией.
const SessionCookieName = "session"

type ctxKey struct{}

type sessionClaims struct {
	Theme string `json:"theme"`
	jwt.RegisteredClaims
}

// SessionManager выпускает и проверяет cookie сессии (JWT, HS256).
// Состояние сессии живёт в cookie; сервер помнит только отозванные jti до их истечения.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> exp
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure, revoked: make(map[string]time.Time)}
}

// Issue подписывает сессию и кладёт её в cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, s model.Session) error {
	if s.Username == "" {
		return errors.New("empty session username")
	}
	if s.Theme == "" {
		s.Theme = model.ThemeLight
	}
	now := time.Now()
	claims := sessionClaims{
		Theme: s.Theme,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear удаляет cookie сессии.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse проверяет подпись, срок действия и отзыв cookie.
func (m *SessionManager) Parse(r *http.Request) (model.Session, bool) {
	claims, ok := m.claims(r)
	if !ok || m.isRevoked(claims.ID) {
		return model.Session{}, false
	}
	theme := claims.Theme
	if theme != model.ThemeDark {
		theme = model.ThemeLight
	}
	return model.Session{Username: claims.Subject, Theme: theme}, true
}

// Revoke запоминает jti токена из запроса, чтобы перехваченная cookie
// не работала после выхода. Запись живёт до истечения самого токена.
func (m *SessionManager) Revoke(r *http.Request) {
	claims, ok := m.claims(r)
	if !ok || claims.ID == "" {
		return
	}
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
	m.revoked[claims.ID] = claims.ExpiresAt.Time
}

func (m *SessionManager) isRevoked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok
}

func (m *SessionManager) claims(r *http.Request) (*sessionClaims, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	var claims sessionClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || claims.Subject == "" {
		return nil, false
	}
	return &claims, true
}

// WithAuth кладёт сессию в контекст, если cookie валидна. Анонимные запросы проходят дальше.
func WithAuth(m *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := m.Parse(r); ok {
				r = r.WithContext(WithSession(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth отправляет анонимных пользователей на страницу входа.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// GetSessionFromContext возвращает сессию текущего запроса.
func GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(model.Session)
	return s, ok
}
