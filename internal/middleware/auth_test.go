package middleware

import (
	"FileVault/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func issueCookies(t *testing.T, m *SessionManager, s model.Session) []*http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := m.Issue(rr, s); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return rr.Result().Cookies()
}

// Тест: Issue + WithAuth — сессия попадает в контекст
func TestWithAuth_ValidCookieSetsSession(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	var got model.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSessionFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		got = s
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range issueCookies(t, m, model.Session{Username: "alice", Theme: model.ThemeDark}) {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	WithAuth(m)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid cookie, got %d", rr.Code)
	}
	if got.Username != "alice" || got.Theme != model.ThemeDark {
		t.Fatalf("unexpected session: %+v", got)
	}
}

// Тест: отсутствие cookie — сессия не устанавливается
func TestWithAuth_NoCookieLeavesAnonymous(t *testing.T) {
	m := NewSessionManager("any-secret", time.Hour, false)
	h := WithAuth(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); ok {
			t.Fatalf("session must not be set without cookie")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// Тест: cookie, подписанная другим секретом или просроченная, не принимается
func TestSessionManager_RejectsForeignAndExpired(t *testing.T) {
	a := NewSessionManager("secret-A", time.Hour, false)
	b := NewSessionManager("secret-B", time.Hour, false)
	expired := NewSessionManager("secret-B", -time.Minute, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range issueCookies(t, a, model.Session{Username: "alice"}) {
		req.AddCookie(c)
	}
	if _, ok := b.Parse(req); ok {
		t.Fatalf("token signed with another secret must be rejected")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range issueCookies(t, expired, model.Session{Username: "alice"}) {
		// у просроченной cookie Expires в прошлом, подкладываем вручную
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	if _, ok := b.Parse(req); ok {
		t.Fatalf("expired token must be rejected")
	}
}

func TestSessionManager_ClearAndDefaults(t *testing.T) {
	m := NewSessionManager("s", time.Hour, true)

	cookies := issueCookies(t, m, model.Session{Username: "bob"})
	if len(cookies) != 1 || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("session cookie must be HttpOnly and Secure: %+v", cookies)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	s, ok := m.Parse(req)
	if !ok || s.Theme != model.ThemeLight {
		t.Fatalf("default theme must be light: %+v %v", s, ok)
	}

	rr := httptest.NewRecorder()
	m.Clear(rr)
	cleared := rr.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("clear must expire cookie: %+v", cleared)
	}

	if err := m.Issue(httptest.NewRecorder(), model.Session{}); err == nil {
		t.Fatalf("empty username must be rejected")
	}
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(WithSession(req.Context(), model.Session{Username: "alice"}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated, got %d", rr.Code)
	}
}

// Тест: после Revoke та же cookie больше не принимается, новая сессия работает
func TestSessionManager_RevokeRejectsReplayedCookie(t *testing.T) {
	m := NewSessionManager("s", time.Hour, false)

	old := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range issueCookies(t, m, model.Session{Username: "alice"}) {
		old.AddCookie(c)
	}
	if _, ok := m.Parse(old); !ok {
		t.Fatalf("fresh cookie must be accepted")
	}

	m.Revoke(old)
	if _, ok := m.Parse(old); ok {
		t.Fatalf("revoked cookie must be rejected")
	}

	fresh := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range issueCookies(t, m, model.Session{Username: "alice"}) {
		fresh.AddCookie(c)
	}
	if _, ok := m.Parse(fresh); !ok {
		t.Fatalf("new session after revoke must be accepted")
	}

	// запрос без cookie ничего не ломает
	m.Revoke(httptest.NewRequest(http.MethodGet, "/", nil))
}
