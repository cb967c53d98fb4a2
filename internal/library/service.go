// Package library は画面ごとのユースケース（読み込み・登録・返却・削除）を提供します。
package library

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/biblioteca-web/internal/api"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// Backend は図書館 API のうちユースケースが使う操作です。*api.Client が実装します。
type Backend interface {
	ListMateriales(ctx context.Context) ([]model.MaterialRecord, error)
	CreateMaterial(ctx context.Context, draft model.MaterialDraft) (model.MaterialRecord, error)
	DeleteMaterial(ctx context.Context, id string) error

	ListUsuarios(ctx context.Context) ([]model.UsuarioRecord, error)
	GetUsuario(ctx context.Context, id string) (model.UsuarioRecord, error)
	CreateUsuario(ctx context.Context, reg model.UsuarioRegistration) (model.UsuarioRecord, error)
	DeleteUsuario(ctx context.Context, id string) error

	ListPrestamos(ctx context.Context) ([]model.Prestamo, error)
	ListPrestamosByUsuario(ctx context.Context, usuarioID string) ([]model.Prestamo, error)
	CreatePrestamo(ctx context.Context, draft model.Prestamo) (model.Prestamo, error)
	UpdatePrestamo(ctx context.Context, id string, prestamo model.Prestamo) (model.Prestamo, error)
	DeletePrestamo(ctx context.Context, id string) error
}

var _ Backend = (*api.Client)(nil)

// ErrNotFound は一覧に指定の ID が存在しない場合のエラーです。
var ErrNotFound = errors.New("item not found in list")

// Service はユースケースの入口です。
type Service struct {
	backend Backend
	logger  *logrus.Logger
	now     func() time.Time
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithClock は返却日の算出に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger はロガーを設定します。
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New は Service を作成します。
func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		logger:  logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today は時計の暦日を返します。
func (s *Service) Today() model.Date {
	return model.NewDate(s.now())
}
