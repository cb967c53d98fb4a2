// Package auth はセッション管理・ルート認可・ログイン処理を提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/biblioteca-web/internal/api"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// Role はログインしている主体の種類です。
type Role string

const (
	RoleUsuario Role = "usuario"
	RoleAdmin   Role = "admin"
)

// ParseRole は保存値やフォーム値を Role に変換します。
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUsuario, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// 永続化に使うキー
const (
	KeyUserType = "userType"
	KeyUserID   = "userId"
)

const adminSubject = "admin"

var (
	// ErrInvalidCredentials は API が資格情報を拒否した場合のエラーです。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownRole は未対応のロールでログインしようとした場合のエラーです。
	ErrUnknownRole = errors.New("unknown role")
)

// Session は現在のログイン状態です。
type Session struct {
	Authenticated bool
	Role          Role
	SubjectID     string
}

// Valid は未認証なら Role と SubjectID が空、認証済みならどちらも設定済みであることを確認します。
func (s Session) Valid() bool {
	if !s.Authenticated {
		return s.Role == "" && s.SubjectID == ""
	}
	_, ok := ParseRole(string(s.Role))
	return ok && s.SubjectID != ""
}

// IsAdmin は管理者としてログインしているかどうかを返します。
func (s Session) IsAdmin() bool { return s.Authenticated && s.Role == RoleAdmin }

// KV はセッションを永続化する文字列キー・バリューストアです。
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Save() error
}

// Authenticator はリモート API で資格情報を確認します。
type Authenticator interface {
	LoginUsuario(ctx context.Context, idUsuario, password string) error
	LoginAdmin(ctx context.Context, password string) error
}

// Verifier は復元したセッションがまだ有効かを確認します。
type Verifier interface {
	Verify(ctx context.Context, s Session) (bool, error)
}

// UsuarioGetter は利用者を1件取得します。
type UsuarioGetter interface {
	GetUsuario(ctx context.Context, id string) (model.UsuarioRecord, error)
}

// APIVerifier は GET /api/usuarios/{id} で利用者の存在を確認します。
// 管理者には確認用のエンドポイントがないため常に有効とします。
type APIVerifier struct {
	Usuarios UsuarioGetter
}

// Verify implements Verifier.
func (v APIVerifier) Verify(ctx context.Context, s Session) (bool, error) {
	if !s.Authenticated || s.Role != RoleUsuario {
		return true, nil
	}
	_, err := v.Usuarios.GetUsuario(ctx, s.SubjectID)
	switch {
	case err == nil:
		return true, nil
	case api.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound):
		return false, nil
	default:
		return true, err
	}
}

// Credentials はログインフォームの入力です。管理者の場合 IDUsuario は使いません。
type Credentials struct {
	IDUsuario string
	Password  string
}

// Store は1リクエスト分のセッション状態を保持します。
type Store struct {
	kv       KV
	authn    Authenticator
	verifier Verifier
	logger   *logrus.Logger
	current  Session
}

// StoreOption は Store の設定を変更します。
type StoreOption func(*Store)

// WithVerifier は復元時の再検証を有効にします。
func WithVerifier(v Verifier) StoreOption {
	return func(s *Store) { s.verifier = v }
}

// WithStoreLogger はロガーを設定します。
func WithStoreLogger(logger *logrus.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore は未認証状態の Store を作成します。
func NewStore(kv KV, authn Authenticator, opts ...StoreOption) *Store {
	s := &Store{kv: kv, authn: authn, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current は現在のセッションを返します。
func (s *Store) Current() Session {
	return s.current
}

// Login は API で資格情報を確認し、成功した場合だけセッションを保存します。
// 利用者 ID が空なら API を呼ばずに *model.ValidationError を返します。
// 失敗時はメモリ上の状態も保存内容も変更しません。
func (s *Store) Login(ctx context.Context, role Role, creds Credentials) error {
	var (
		err     error
		subject string
	)
	switch role {
	case RoleUsuario:
		if strings.TrimSpace(creds.IDUsuario) == "" {
			return &model.ValidationError{
				Message: "Ingrese su ID de usuario.",
				Fields:  model.FieldErrors{"idUsuario": "Este campo es obligatorio."},
			}
		}
		err = s.authn.LoginUsuario(ctx, creds.IDUsuario, creds.Password)
		subject = creds.IDUsuario
	case RoleAdmin:
		err = s.authn.LoginAdmin(ctx, creds.Password)
		subject = adminSubject
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return fmt.Errorf("login request failed: %w", err)
	}

	s.kv.Set(KeyUserType, string(role))
	s.kv.Set(KeyUserID, subject)
	if err := s.kv.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.current = Session{Authenticated: true, Role: role, SubjectID: subject}
	return nil
}

// Logout はセッションを破棄します。サーバーへの通知は行いません。
func (s *Store) Logout() error {
	s.current = Session{}
	s.kv.Delete(KeyUserType)
	s.kv.Delete(KeyUserID)
	return s.kv.Save()
}

// Hydrate は保存されたセッションを復元します。
// userType が既知のロールでなければ未認証のままです。
func (s *Store) Hydrate(ctx context.Context) Session {
	s.current = Session{}

	raw, ok := s.kv.Get(KeyUserType)
	if !ok {
		return s.current
	}
	role, ok := ParseRole(raw)
	if !ok {
		return s.current
	}
	subject, _ := s.kv.Get(KeyUserID)
	if role == RoleAdmin && subject == "" {
		subject = adminSubject
	}
	if subject == "" {
		return s.current
	}
	restored := Session{Authenticated: true, Role: role, SubjectID: subject}

	if s.verifier != nil {
		valid, err := s.verifier.Verify(ctx, restored)
		if err != nil {
			s.logger.WithError(err).WithField("role", role).Warn("session revalidation failed, keeping session")
		}
		if !valid {
			s.logger.WithField("role", role).Info("stored session rejected by api")
			if err := s.Logout(); err != nil {
				s.logger.WithError(err).Warn("failed to clear rejected session")
			}
			return s.current
		}
	}

	s.current = restored
	return s.current
}
