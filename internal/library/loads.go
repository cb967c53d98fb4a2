package library

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/biblioteca-web/internal/listing"
	"github.com/yourusername/biblioteca-web/internal/model"
)

const recentItems = 5

// AdminDashboard は管理者ダッシュボードの表示内容です。
type AdminDashboard struct {
	TotalMateriales    int
	TotalUsuarios      int
	TotalPrestamos     int
	PrestamosActivos   int
	PrestamosVencidos  int
	PrestamosRecientes []model.Prestamo
	UsuariosRecientes  []model.UsuarioRecord
}

// AdminDashboard は資料・利用者・貸出を並行して取得します。いずれかが失敗すれば全体が失敗です。
func (s *Service) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	var (
		materiales []model.MaterialRecord
		usuarios   []model.UsuarioRecord
		prestamos  []model.Prestamo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		materiales, err = s.backend.ListMateriales(gctx)
		return err
	})
	g.Go(func() (err error) {
		usuarios, err = s.backend.ListUsuarios(gctx)
		return err
	})
	g.Go(func() (err error) {
		prestamos, err = s.backend.ListPrestamos(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminDashboard{}, fmt.Errorf("failed to load admin dashboard: %w", err)
	}

	activos, vencidos := countEstados(prestamos)
	return AdminDashboard{
		TotalMateriales:    len(materiales),
		TotalUsuarios:      len(usuarios),
		TotalPrestamos:     len(prestamos),
		PrestamosActivos:   activos,
		PrestamosVencidos:  vencidos,
		PrestamosRecientes: listing.Recent(prestamos, recentItems),
		UsuariosRecientes:  listing.Recent(usuarios, recentItems),
	}, nil
}

// UserDashboard は利用者ダッシュボードの表示内容です。
type UserDashboard struct {
	Usuario           model.UsuarioRecord
	TotalMateriales   int
	TotalPrestamos    int
	PrestamosActivos  int
	PrestamosVencidos int
	Prestamos         []LoanView
	Catalogo          []model.MaterialRecord
}

// UserDashboard は利用者本人の貸出・資料・利用者情報を並行して取得します。
func (s *Service) UserDashboard(ctx context.Context, usuarioID string) (UserDashboard, error) {
	var (
		prestamos  []model.Prestamo
		materiales []model.MaterialRecord
		usuario    model.UsuarioRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		prestamos, err = s.backend.ListPrestamosByUsuario(gctx, usuarioID)
		return err
	})
	g.Go(func() (err error) {
		materiales, err = s.backend.ListMateriales(gctx)
		return err
	})
	g.Go(func() (err error) {
		usuario, err = s.backend.GetUsuario(gctx, usuarioID)
		return err
	})
	if err := g.Wait(); err != nil {
		return UserDashboard{}, fmt.Errorf("failed to load user dashboard: %w", err)
	}

	activos, vencidos := countEstados(prestamos)
	return UserDashboard{
		Usuario:           usuario,
		TotalMateriales:   len(materiales),
		TotalPrestamos:    len(prestamos),
		PrestamosActivos:  activos,
		PrestamosVencidos: vencidos,
		Prestamos:         LoanViews(listing.Recent(prestamos, recentItems), materiales),
		Catalogo:          listing.Recent(materiales, recentItems),
	}, nil
}

// LoanFormOptions は貸出登録フォームの選択肢です。
type LoanFormOptions struct {
	Materiales []model.MaterialRecord
	Usuarios   []model.UsuarioRecord
}

// LoanFormOptions は資料と利用者を並行して取得します。
func (s *Service) LoanFormOptions(ctx context.Context) (LoanFormOptions, error) {
	var opts LoanFormOptions

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		opts.Materiales, err = s.backend.ListMateriales(gctx)
		return err
	})
	g.Go(func() (err error) {
		opts.Usuarios, err = s.backend.ListUsuarios(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return LoanFormOptions{}, fmt.Errorf("failed to load loan form options: %w", err)
	}
	return opts, nil
}

// MisPrestamos は利用者本人の貸出と、タイトル解決用の資料一覧を並行して取得します。
func (s *Service) MisPrestamos(ctx context.Context, usuarioID string) ([]model.Prestamo, []model.MaterialRecord, error) {
	var (
		prestamos  []model.Prestamo
		materiales []model.MaterialRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		prestamos, err = s.backend.ListPrestamosByUsuario(gctx, usuarioID)
		return err
	})
	g.Go(func() (err error) {
		materiales, err = s.backend.ListMateriales(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load loans of %s: %w", usuarioID, err)
	}
	return prestamos, materiales, nil
}

// Materiales は全資料を取得します。
func (s *Service) Materiales(ctx context.Context) ([]model.MaterialRecord, error) {
	materiales, err := s.backend.ListMateriales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	reportInvalid(s, "material_id", materiales, materialID)
	return materiales, nil
}

// Usuarios は全利用者を取得します。
func (s *Service) Usuarios(ctx context.Context) ([]model.UsuarioRecord, error) {
	usuarios, err := s.backend.ListUsuarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return usuarios, nil
}

// Prestamos は全貸出を取得します。
func (s *Service) Prestamos(ctx context.Context) ([]model.Prestamo, error) {
	prestamos, err := s.backend.ListPrestamos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	reportInvalid(s, "prestamo_id", prestamos, prestamoID)
	return prestamos, nil
}

// reportInvalid は整合性のないレコードを警告として記録します。一覧の表示は止めません。
func reportInvalid[T interface{ Validate() error }](s *Service, field string, items []T, id func(T) string) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			s.logger.WithError(err).WithField(field, id(item)).Warn("inconsistent record from api")
		}
	}
}

func countEstados(prestamos []model.Prestamo) (activos, vencidos int) {
	for _, p := range prestamos {
		switch p.Estado {
		case model.EstadoActivo:
			activos++
		case model.EstadoVencido:
			vencidos++
		}
	}
	return activos, vencidos
}
