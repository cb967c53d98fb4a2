package library

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/biblioteca-web/internal/model"
)

// RegisterMaterial は入力を検証してから資料を登録します。検証に失敗した場合 API は呼びません。
func (s *Service) RegisterMaterial(ctx context.Context, form model.MaterialForm) (model.MaterialRecord, error) {
	draft, err := form.Draft()
	if err != nil {
		return model.MaterialRecord{}, err
	}
	created, err := s.backend.CreateMaterial(ctx, draft)
	if err != nil {
		return model.MaterialRecord{}, fmt.Errorf("failed to register %s: %w", draft.Kind(), err)
	}
	s.logger.WithFields(logrus.Fields{"material_id": created.ID, "tipo": draft.Kind()}).Info("material registered")
	return created, nil
}

// RegisterUsuario は入力を検証してから利用者を登録します。
func (s *Service) RegisterUsuario(ctx context.Context, form model.UsuarioForm) (model.UsuarioRecord, error) {
	reg, err := form.Registration()
	if err != nil {
		return model.UsuarioRecord{}, err
	}
	created, err := s.backend.CreateUsuario(ctx, reg)
	if err != nil {
		return model.UsuarioRecord{}, fmt.Errorf("failed to register %s: %w", reg.Kind(), err)
	}
	s.logger.WithFields(logrus.Fields{"usuario_id": created.ID, "tipo": reg.Kind()}).Info("user registered")
	return created, nil
}

// RegisterPrestamo は入力を検証してから ACTIVO の貸出を登録します。
func (s *Service) RegisterPrestamo(ctx context.Context, form model.PrestamoForm) (model.Prestamo, error) {
	draft, err := form.Draft()
	if err != nil {
		return model.Prestamo{}, err
	}
	created, err := s.backend.CreatePrestamo(ctx, draft)
	if err != nil {
		return model.Prestamo{}, fmt.Errorf("failed to register loan: %w", err)
	}
	s.logger.WithField("prestamo_id", created.IDPrestamo).Info("loan registered")
	return created, nil
}

// ReturnLoan は貸出を本日付で返却済みにし、一覧の該当要素をサーバーの応答で置き換えます。
// 失敗した場合は元の一覧をそのまま返します。
func (s *Service) ReturnLoan(ctx context.Context, loans []model.Prestamo, id string) ([]model.Prestamo, error) {
	idx := indexOf(loans, id, prestamoID)
	if idx < 0 {
		return loans, fmt.Errorf("loan %s: %w", id, ErrNotFound)
	}

	returned, err := loans[idx].Returned(s.Today())
	if err != nil {
		return loans, fmt.Errorf("loan %s: %w", id, err)
	}
	if err := returned.Validate(); err != nil {
		return loans, fmt.Errorf("loan %s: %w", id, err)
	}

	updated, err := s.backend.UpdatePrestamo(ctx, id, returned)
	if err != nil {
		return loans, fmt.Errorf("failed to return loan %s: %w", id, err)
	}
	if updated.IDPrestamo == "" {
		// 本文のない応答は送信した内容で反映する
		updated = returned
	}

	out := make([]model.Prestamo, len(loans))
	copy(out, loans)
	out[idx] = updated
	s.logger.WithField("prestamo_id", id).Info("loan returned")
	return out, nil
}

// DeleteMaterial は資料を削除し、成功した場合だけ一覧から取り除きます。
func (s *Service) DeleteMaterial(ctx context.Context, materiales []model.MaterialRecord, id string) ([]model.MaterialRecord, error) {
	return deleteFrom(ctx, materiales, id, materialID, s.backend.DeleteMaterial)
}

// DeleteUsuario は利用者を削除し、成功した場合だけ一覧から取り除きます。
func (s *Service) DeleteUsuario(ctx context.Context, usuarios []model.UsuarioRecord, id string) ([]model.UsuarioRecord, error) {
	return deleteFrom(ctx, usuarios, id, usuarioID, s.backend.DeleteUsuario)
}

// DeletePrestamo は貸出を削除し、成功した場合だけ一覧から取り除きます。
func (s *Service) DeletePrestamo(ctx context.Context, prestamos []model.Prestamo, id string) ([]model.Prestamo, error) {
	return deleteFrom(ctx, prestamos, id, prestamoID, s.backend.DeletePrestamo)
}

func deleteFrom[T any](ctx context.Context, items []T, id string, idOf func(T) string, del func(context.Context, string) error) ([]T, error) {
	if err := del(ctx, id); err != nil {
		return items, fmt.Errorf("failed to delete %s: %w", id, err)
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func materialID(m model.MaterialRecord) string { return m.ID }
func usuarioID(u model.UsuarioRecord) string   { return u.ID }
func prestamoID(p model.Prestamo) string       { return p.IDPrestamo }
