package auth

import (
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func newTestRouter(t *testing.T, authn Authenticator, attempts AttemptStore) *browser {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	manager := NewManager(authn, attempts, logger)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New(LoginTemplate).Parse(`{{.Error}}|{{.From}}`)))
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	router.Use(manager.LoadSession())

	router.GET("/login", manager.LoginPage)
	router.POST("/login", manager.Login)

	gated := router.Group("/", RequireSection(), manager.EnsureCSRF(), manager.VerifyCSRF())
	gated.POST("/logout", manager.Logout)
	gated.GET("/admin/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "admin:"+CSRFToken(c)) })
	gated.GET("/user/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "user:"+SessionFrom(c).Current().SubjectID) })
	gated.POST("/admin/action", func(c *gin.Context) { c.String(http.StatusOK, "done") })

	return &browser{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func TestLoginFlowForUsuario(t *testing.T) {
	b := newTestRouter(t, newStub(), nil)

	rec := b.get("/user/dashboard")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?from=%2Fuser%2Fdashboard" {
		t.Fatalf("unexpected redirect: %d %s", rec.Code, rec.Header().Get("Location"))
	}

	rec = b.post("/login", url.Values{"tipo": {"usuario"}, "idUsuario": {" U1 "}, "password": {"pw1"}, "from": {"/user/dashboard"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/user/dashboard" {
		t.Fatalf("unexpected login response: %d %s", rec.Code, rec.Header().Get("Location"))
	}

	rec = b.get("/user/dashboard")
	if rec.Code != http.StatusOK || rec.Body.String() != "user:U1" {
		t.Fatalf("unexpected dashboard response: %d %s", rec.Code, rec.Body.String())
	}

	// 既にログイン済みならログイン画面からダッシュボードへ
	rec = b.get("/login")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/user/dashboard" {
		t.Fatalf("logged in user should skip login page: %d %s", rec.Code, rec.Header().Get("Location"))
	}

	rec = b.get("/admin/dashboard")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/user/dashboard" {
		t.Fatalf("wrong role should go to own dashboard: %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginRejectsInvalidCredentials(t *testing.T) {
	stub := newStub()
	b := newTestRouter(t, stub, nil)

	rec := b.post("/login", url.Values{"tipo": {"admin"}, "password": {"nope"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Contraseña de administrador incorrecta") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = b.get("/admin/dashboard")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("failed login must not authenticate, got %d", rec.Code)
	}
}

func TestLoginLocalValidationSkipsAPI(t *testing.T) {
	stub := newStub()
	b := newTestRouter(t, stub, nil)

	rec := b.post("/login", url.Values{"tipo": {"usuario"}, "idUsuario": {"  "}, "password": {"pw1"}})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "ID de usuario") {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
	rec = b.post("/login", url.Values{"tipo": {"admin"}, "password": {""}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("api should not be called, got %d calls", stub.calls)
	}
}

func TestLoginThrottle(t *testing.T) {
	stub := newStub()
	b := newTestRouter(t, stub, NewMemoryAttempts(Limits{MaxAttempts: 2, Window: DefaultLimits.Window, Lock: DefaultLimits.Lock}))

	for i := 0; i < 2; i++ {
		if rec := b.post("/login", url.Values{"tipo": {"admin"}, "password": {"bad"}}); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, rec.Code)
		}
	}

	rec := b.post("/login", url.Values{"tipo": {"admin"}, "password": {"root"}})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "600" {
		t.Fatalf("unexpected Retry-After: %q", rec.Header().Get("Retry-After"))
	}
	if stub.calls != 2 {
		t.Fatalf("locked login must not reach the api, got %d calls", stub.calls)
	}
}

func TestCSRFAndLogout(t *testing.T) {
	b := newTestRouter(t, newStub(), nil)

	if rec := b.post("/login", url.Values{"tipo": {"admin"}, "password": {"root"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login failed: %d", rec.Code)
	}

	rec := b.get("/admin/dashboard")
	token := strings.TrimPrefix(rec.Body.String(), "admin:")
	if token == "" || rec.Header().Get(CSRFHeader) != token {
		t.Fatalf("expected csrf token, got %q", rec.Body.String())
	}

	if rec := b.post("/admin/action", url.Values{}); rec.Code != http.StatusForbidden {
		t.Fatalf("missing token should be rejected, got %d", rec.Code)
	}
	if rec := b.post("/admin/action", url.Values{CSRFFormField: {"wrong"}}); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token should be rejected, got %d", rec.Code)
	}
	if rec := b.post("/admin/action", url.Values{CSRFFormField: {token}}); rec.Code != http.StatusOK {
		t.Fatalf("form token should be accepted, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/action", nil)
	req.Header.Set(CSRFHeader, token)
	if rec := b.do(req); rec.Code != http.StatusOK {
		t.Fatalf("header token should be accepted, got %d", rec.Code)
	}

	rec = b.post("/logout", url.Values{CSRFFormField: {token}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Fatalf("unexpected logout response: %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if rec := b.get("/admin/dashboard"); rec.Code != http.StatusSeeOther {
		t.Fatalf("session should be gone after logout, got %d", rec.Code)
	}
}
