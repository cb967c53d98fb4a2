package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/biblioteca-web/internal/api"
	"github.com/yourusername/biblioteca-web/internal/auth"
	"github.com/yourusername/biblioteca-web/internal/library"
	"github.com/yourusername/biblioteca-web/internal/logging"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// テンプレート名
const (
	pageError           = "error"
	pageNotFound        = "not_found"
	pageConfirm         = "confirm"
	pageAdminDashboard  = "admin_dashboard"
	pageMateriales      = "materiales"
	pageUsuarios        = "usuarios"
	pagePrestamos       = "prestamos"
	pageRegistroMat     = "registro_material"
	pageRegistroUsuario = "registro_usuario"
	pageRegistroPrest   = "registro_prestamo"
	pageUserDashboard   = "user_dashboard"
	pageCatalogo        = "catalogo"
	pageMisPrestamos    = "mis_prestamos"
)

const (
	msgErrorDatos     = "Error al cargar los datos. Por favor, intente nuevamente."
	msgErrorNecesario = "Error al cargar los datos necesarios. Por favor, intente nuevamente."
)

// Handler は画面のハンドラーです。
type Handler struct {
	svc            *library.Service
	logger         *logrus.Logger
	rowsPerPage    int
	catalogPerPage int
}

// Option は Handler の設定を変更します。
type Option func(*Handler)

// WithRowsPerPage は一覧の1ページの行数を設定します。
func WithRowsPerPage(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.rowsPerPage = n
		}
	}
}

// WithCatalogPerPage はカタログの1ページの件数を設定します。
func WithCatalogPerPage(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.catalogPerPage = n
		}
	}
}

// NewHandler は Handler を作成します。
func NewHandler(svc *library.Service, logger *logrus.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:            svc,
		logger:         logger,
		rowsPerPage:    10,
		catalogPerPage: 9,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Home は / のハンドラーです。ログイン状態に応じて移動先を決めます。
func (h *Handler) Home(c *gin.Context) {
	s := auth.SessionFrom(c).Current()
	if !s.Authenticated {
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}
	c.Redirect(http.StatusSeeOther, auth.Home(s.Role))
}

// NotFound は未定義のパスに 404 ページを返します。
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, pageNotFound, "Página no encontrada", nil)
}

// Health はヘルスチェックエンドポイントのハンドラーを返します。
func Health(service, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": service,
			"version": version,
		})
	}
}

// SessionProbe は現在のセッションを JSON で返します。
func SessionProbe(c *gin.Context) {
	s := auth.SessionFrom(c).Current()
	if !s.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHENTICATED",
			"message": "Sesión no iniciada.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"userType":      s.Role,
		"userId":        s.SubjectID,
		"home":          auth.Home(s.Role),
	})
}

// render は layout 共通の値を補ってページを描画します。
func (h *Handler) render(c *gin.Context, status int, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Session"] = auth.SessionFrom(c).Current()
	data["CSRFToken"] = auth.CSRFToken(c)
	data["Path"] = c.Request.URL.Path
	data["Flash"] = h.popFlash(c)
	if _, ok := data["Fields"]; !ok {
		data["Fields"] = model.FieldErrors{}
	}
	c.HTML(status, page, data)
}

// readError は読み込みに失敗したページを 502 で描画します。部分的なデータは表示しません。
func (h *Handler) readError(c *gin.Context, err error, title, message string) {
	h.log(c).WithError(err).WithField("page", title).Error("failed to load page data")
	h.render(c, http.StatusBadGateway, pageError, title, gin.H{"Error": message})
}

func (h *Handler) log(c *gin.Context) *logrus.Entry {
	return h.logger.WithField("request_id", logging.RequestIDFrom(c.Request.Context()))
}

// writeStatus は書き込み失敗時の応答ステータスを決めます。
func writeStatus(err error) int {
	if _, ok := model.AsValidationError(err); ok {
		return http.StatusBadRequest
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// formErrors は入力検証またはサーバーの項目別エラーを表示用にまとめます。
func formErrors(err error, generic string) (string, model.FieldErrors) {
	if ve, ok := model.AsValidationError(err); ok {
		return ve.Message, ve.Fields
	}
	fields := model.FieldErrors{}
	for k, v := range api.FieldErrors(err) {
		fields[k] = v
	}
	return generic, fields
}

func confirmed(c *gin.Context) bool {
	return strings.EqualFold(c.PostForm("confirmar"), "si")
}

// setFlash は次に描画するページへのメッセージを保存します。
func (h *Handler) setFlash(c *gin.Context, message string) {
	s := sessions.Default(c)
	s.AddFlash(message)
	if err := s.Save(); err != nil {
		h.log(c).WithError(err).Warn("failed to save flash message")
	}
}

func (h *Handler) popFlash(c *gin.Context) string {
	s := sessions.Default(c)
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	if err := s.Save(); err != nil {
		h.log(c).WithError(err).Warn("failed to clear flash message")
	}
	msg, _ := flashes[0].(string)
	return msg
}
