package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sessionKeyCSRF = "csrf_token"

	// CSRFHeader は CSRF トークンを送るヘッダー名です。
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField は CSRF トークンを送るフォーム項目名です。
	CSRFFormField = "csrf_token"
)

// ContextStoreKey と ContextCSRFKey はハンドラー間で値を共有するためのキーです。
const (
	ContextStoreKey = "auth.store"
	ContextCSRFKey  = "auth.csrf"
)

// Manager はログイン処理・セッション復元・CSRF 検証をまとめた構造体です。
type Manager struct {
	authn    Authenticator
	attempts AttemptStore
	verifier Verifier
	logger   *logrus.Logger
}

// ManagerOption は Manager の設定を変更します。
type ManagerOption func(*Manager)

// WithSessionVerifier はリクエストごとのセッション再検証を有効にします。
func WithSessionVerifier(v Verifier) ManagerOption {
	return func(m *Manager) { m.verifier = v }
}

// NewManager は認証マネージャーを作成します。attempts が nil の場合はメモリ上で数えます。
func NewManager(authn Authenticator, attempts AttemptStore, logger *logrus.Logger, opts ...ManagerOption) *Manager {
	if attempts == nil {
		attempts = NewMemoryAttempts(DefaultLimits)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m := &Manager{authn: authn, attempts: attempts, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadSession はクッキーからセッションを復元し、Store を gin.Context に格納します。
func (m *Manager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := []StoreOption{WithStoreLogger(m.logger)}
		if m.verifier != nil {
			opts = append(opts, WithVerifier(m.verifier))
		}
		store := NewStore(NewCookieKV(sessions.Default(c)), m.authn, opts...)
		store.Hydrate(c.Request.Context())
		c.Set(ContextStoreKey, store)
		c.Next()
	}
}

// SessionFrom は LoadSession が格納した Store を返します。
// 格納されていない場合は未認証の Store を返します。
func SessionFrom(c *gin.Context) *Store {
	if v, ok := c.Get(ContextStoreKey); ok {
		if store, ok := v.(*Store); ok {
			return store
		}
	}
	return NewStore(NewMemoryKV(nil), nil)
}

// RequireSection は Authorize の結果に従ってリダイレクトするミドルウェアです。
func RequireSection() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := Authorize(SessionFrom(c).Current(), c.Request.URL.Path)
		if !decision.Allow {
			c.Redirect(http.StatusSeeOther, decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}

// EnsureCSRF はセッションに CSRF トークンがなければ発行し、テンプレート用に公開します。
func (m *Manager) EnsureCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, ok := session.Get(sessionKeyCSRF).(string)
		if !ok || token == "" {
			var err error
			token, err = generateToken()
			if err != nil {
				m.logger.WithError(err).Error("failed to generate csrf token")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    "TOKEN_GENERATION_FAILED",
					"message": "No se pudo generar el token CSRF",
				})
				return
			}
			session.Set(sessionKeyCSRF, token)
			if err := session.Save(); err != nil {
				m.logger.WithError(err).Warn("failed to save csrf token")
			}
		}
		c.Set(ContextCSRFKey, token)
		c.Header(CSRFHeader, token)
		c.Next()
	}
}

// CSRFToken は現在のリクエストの CSRF トークンを返します。
func CSRFToken(c *gin.Context) string {
	return c.GetString(ContextCSRFKey)
}

// VerifyCSRF は X-CSRF-Token ヘッダーまたは csrf_token フォーム項目を検証するミドルウェアです。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		session := sessions.Default(c)
		expected, ok := session.Get(sessionKeyCSRF).(string)
		if !ok || expected == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_MISSING",
				"message": "El token CSRF no está configurado",
			})
			return
		}

		received := c.GetHeader(CSRFHeader)
		if received == "" {
			received = c.PostForm(CSRFFormField)
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			m.logger.WithField("path", c.Request.URL.Path).Warn("csrf token mismatch")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_INVALID",
				"message": "El token CSRF no coincide",
			})
			return
		}

		c.Next()
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
