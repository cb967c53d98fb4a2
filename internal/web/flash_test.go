package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	gsessions "github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// failingSaveStore はクッキーの書き込みだけ失敗するストアです。
type failingSaveStore struct {
	sessions.Store
}

func (f failingSaveStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(f, name)
}

func (failingSaveStore) Save(*http.Request, http.ResponseWriter, *gsessions.Session) error {
	return errors.New("cookie too large")
}

func TestFlashSaveFailureIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logtest.NewNullLogger()
	h := NewHandler(nil, logger)

	router := gin.New()
	router.Use(sessions.Sessions("test_session", failingSaveStore{cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))}))
	router.POST("/flash", func(c *gin.Context) {
		h.setFlash(c, "Material registrado correctamente.")
		c.Status(http.StatusSeeOther)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/flash", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save failure must not change the response: %d", rec.Code)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Message != "failed to save flash message" {
		t.Fatalf("expected a warning, got %+v", hook.AllEntries())
	}
	if entry.Data[logrus.ErrorKey] == nil {
		t.Fatalf("warning must carry the error: %+v", entry.Data)
	}
}
