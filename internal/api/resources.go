package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yourusername/biblioteca-web/internal/listing"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// LoginUsuario は利用者の資格情報を確認します。2xx であれば成功とし、本文は使いません。
func (c *Client) LoginUsuario(ctx context.Context, idUsuario, password string) error {
	body := struct {
		IDUsuario string `json:"idUsuario"`
		Password  string `json:"password"`
	}{idUsuario, password}
	return c.do(ctx, http.MethodPost, "/api/auth/usuario", body, nil)
}

// LoginAdmin は管理者パスワードを確認します。
func (c *Client) LoginAdmin(ctx context.Context, password string) error {
	body := struct {
		Password string `json:"password"`
	}{password}
	return c.do(ctx, http.MethodPost, "/api/auth/admin", body, nil)
}

// ListMateriales は全資料を取得します。
func (c *Client) ListMateriales(ctx context.Context) ([]model.MaterialRecord, error) {
	var out []model.MaterialRecord
	if err := c.do(ctx, http.MethodGet, "/api/materiales", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMaterial は資料を1件取得します。
func (c *Client) GetMaterial(ctx context.Context, id string) (model.MaterialRecord, error) {
	var out model.MaterialRecord
	err := c.do(ctx, http.MethodGet, "/api/materiales/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateMaterial は種別ごとのエンドポイントに資料を登録します。
func (c *Client) CreateMaterial(ctx context.Context, draft model.MaterialDraft) (model.MaterialRecord, error) {
	var path string
	switch draft.(type) {
	case *model.LibroDraft:
		path = "/api/materiales/libro"
	case *model.TesisDraft:
		path = "/api/materiales/tesis"
	default:
		return model.MaterialRecord{}, fmt.Errorf("unsupported material draft %T", draft)
	}

	var out model.MaterialRecord
	err := c.do(ctx, http.MethodPost, path, draft, &out)
	return out, err
}

// UpdateMaterial は資料全体を置き換えます。
func (c *Client) UpdateMaterial(ctx context.Context, id string, material model.MaterialRecord) (model.MaterialRecord, error) {
	var out model.MaterialRecord
	err := c.do(ctx, http.MethodPut, "/api/materiales/"+url.PathEscape(id), material, &out)
	return out, err
}

// DeleteMaterial は資料を削除します。
func (c *Client) DeleteMaterial(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/materiales/"+url.PathEscape(id), nil, nil)
}

// ListUsuarios は全利用者を取得します。
func (c *Client) ListUsuarios(ctx context.Context) ([]model.UsuarioRecord, error) {
	var out []model.UsuarioRecord
	if err := c.do(ctx, http.MethodGet, "/api/usuarios", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUsuario は利用者を1件取得します。
func (c *Client) GetUsuario(ctx context.Context, id string) (model.UsuarioRecord, error) {
	var out model.UsuarioRecord
	err := c.do(ctx, http.MethodGet, "/api/usuarios/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateUsuario は種別ごとのエンドポイントに利用者を登録します。
// type 判別子は送信前に種別に合わせて上書きします。
func (c *Client) CreateUsuario(ctx context.Context, reg model.UsuarioRegistration) (model.UsuarioRecord, error) {
	var path string
	switch r := reg.(type) {
	case *model.AlumnoRegistration:
		r.Type = model.UsuarioAlumno
		path = "/api/usuarios/alumno"
	case *model.DocenteRegistration:
		r.Type = model.UsuarioDocente
		path = "/api/usuarios/docente"
	case *model.ExternoRegistration:
		r.Type = model.UsuarioExterno
		path = "/api/usuarios/externo"
	default:
		return model.UsuarioRecord{}, fmt.Errorf("unsupported usuario registration %T", reg)
	}

	var out model.UsuarioRecord
	err := c.do(ctx, http.MethodPost, path, reg, &out)
	return out, err
}

// UpdateUsuario は利用者全体を置き換えます。
func (c *Client) UpdateUsuario(ctx context.Context, id string, usuario model.UsuarioRecord) (model.UsuarioRecord, error) {
	var out model.UsuarioRecord
	err := c.do(ctx, http.MethodPut, "/api/usuarios/"+url.PathEscape(id), usuario, &out)
	return out, err
}

// DeleteUsuario は利用者を削除します。
func (c *Client) DeleteUsuario(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/usuarios/"+url.PathEscape(id), nil, nil)
}

// ListPrestamos は全貸出を取得します。
func (c *Client) ListPrestamos(ctx context.Context) ([]model.Prestamo, error) {
	var out []model.Prestamo
	if err := c.do(ctx, http.MethodGet, "/api/prestamos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPrestamo は貸出を1件取得します。
func (c *Client) GetPrestamo(ctx context.Context, id string) (model.Prestamo, error) {
	var out model.Prestamo
	err := c.do(ctx, http.MethodGet, "/api/prestamos/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreatePrestamo は貸出を登録します。IDPrestamo は送信しません。
func (c *Client) CreatePrestamo(ctx context.Context, draft model.Prestamo) (model.Prestamo, error) {
	draft.IDPrestamo = ""
	var out model.Prestamo
	err := c.do(ctx, http.MethodPost, "/api/prestamos", draft, &out)
	return out, err
}

// UpdatePrestamo は貸出全体を置き換えます。
func (c *Client) UpdatePrestamo(ctx context.Context, id string, prestamo model.Prestamo) (model.Prestamo, error) {
	var out model.Prestamo
	err := c.do(ctx, http.MethodPut, "/api/prestamos/"+url.PathEscape(id), prestamo, &out)
	return out, err
}

// DeletePrestamo は貸出を削除します。
func (c *Client) DeletePrestamo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/prestamos/"+url.PathEscape(id), nil, nil)
}

// ListPrestamosByUsuario は全貸出を取得してから usuarioID で絞り込みます。
// API に利用者別の一覧エンドポイントはありません。
func (c *Client) ListPrestamosByUsuario(ctx context.Context, usuarioID string) ([]model.Prestamo, error) {
	all, err := c.ListPrestamos(ctx)
	if err != nil {
		return nil, err
	}
	return listing.ForUsuario(all, usuarioID), nil
}
