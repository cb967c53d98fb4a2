package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/biblioteca-web/internal/library"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// AdminDashboard は GET /admin/dashboard のハンドラーです。
func (h *Handler) AdminDashboard(c *gin.Context) {
	dashboard, err := h.svc.AdminDashboard(c.Request.Context())
	if err != nil {
		h.readError(c, err, "Dashboard", msgErrorDatos)
		return
	}
	h.render(c, http.StatusOK, pageAdminDashboard, "Dashboard", gin.H{"Dashboard": dashboard})
}

// Materiales は GET /admin/materiales のハンドラーです。
func (h *Handler) Materiales(c *gin.Context) {
	showList(h, c, materialesList, h.svc.Materiales, "Error al cargar los materiales. Por favor, intente nuevamente.")
}

// Usuarios は GET /admin/usuarios のハンドラーです。
func (h *Handler) Usuarios(c *gin.Context) {
	showList(h, c, usuariosList, h.svc.Usuarios, "Error al cargar los usuarios. Por favor, intente nuevamente.")
}

// Prestamos は GET /admin/prestamos のハンドラーです。
func (h *Handler) Prestamos(c *gin.Context) {
	showList(h, c, prestamosList, h.svc.Prestamos, "Error al cargar los préstamos. Por favor, intente nuevamente.")
}

// DeleteMaterial は POST /admin/materiales/:id/eliminar のハンドラーです。
func (h *Handler) DeleteMaterial(c *gin.Context) {
	runRemoval(h, c, removal[model.MaterialRecord]{
		list:      materialesList,
		title:     "Eliminar material",
		question:  "¿Está seguro que desea eliminar este material?",
		load:      h.svc.Materiales,
		loadError: "Error al cargar los materiales. Por favor, intente nuevamente.",
		remove:    h.svc.DeleteMaterial,
		failure:   "Error al eliminar el material. Por favor, intente nuevamente.",
		success:   "Material eliminado correctamente.",
	})
}

// DeleteUsuario は POST /admin/usuarios/:id/eliminar のハンドラーです。
func (h *Handler) DeleteUsuario(c *gin.Context) {
	runRemoval(h, c, removal[model.UsuarioRecord]{
		list:      usuariosList,
		title:     "Eliminar usuario",
		question:  "¿Está seguro que desea eliminar este usuario?",
		load:      h.svc.Usuarios,
		loadError: "Error al cargar los usuarios. Por favor, intente nuevamente.",
		remove:    h.svc.DeleteUsuario,
		failure:   "Error al eliminar el usuario. Por favor, intente nuevamente.",
		success:   "Usuario eliminado correctamente.",
	})
}

// DeletePrestamo は POST /admin/prestamos/:id/eliminar のハンドラーです。
func (h *Handler) DeletePrestamo(c *gin.Context) {
	runRemoval(h, c, removal[model.Prestamo]{
		list:      prestamosList,
		title:     "Eliminar préstamo",
		question:  "¿Está seguro que desea eliminar este préstamo?",
		load:      h.svc.Prestamos,
		loadError: "Error al cargar los préstamos. Por favor, intente nuevamente.",
		remove:    h.svc.DeletePrestamo,
		failure:   "Error al eliminar el préstamo. Por favor, intente nuevamente.",
		success:   "Préstamo eliminado correctamente.",
	})
}

// ReturnPrestamo は POST /admin/prestamos/:id/devolver のハンドラーです。
func (h *Handler) ReturnPrestamo(c *gin.Context) {
	term, page := listState(c)
	if !confirmed(c) {
		h.confirm(c, "Registrar devolución", "¿Confirmar la devolución de este material?", prestamosList.path)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	prestamos, err := h.svc.Prestamos(ctx)
	if err != nil {
		h.readError(c, err, prestamosList.title, "Error al cargar los préstamos. Por favor, intente nuevamente.")
		return
	}

	updated, err := h.svc.ReturnLoan(ctx, prestamos, id)
	if err != nil {
		status, message := writeStatus(err), "Error al registrar la devolución. Por favor, intente nuevamente."
		switch {
		case errors.Is(err, model.ErrNotReturnable):
			status, message = http.StatusConflict, "Solo se pueden devolver préstamos activos."
		case errors.Is(err, model.ErrReturnBeforeLoan), errors.Is(err, model.ErrInconsistentReturn):
			status, message = http.StatusConflict, "Las fechas del préstamo no son consistentes."
		case errors.Is(err, library.ErrNotFound):
			status, message = http.StatusNotFound, "El préstamo no existe."
		default:
			h.log(c).WithError(err).WithField("prestamo_id", id).Error("failed to return loan")
		}
		renderList(h, c, status, prestamosList, updated, term, page, message)
		return
	}

	h.setFlash(c, "Devolución registrada correctamente.")
	c.Redirect(http.StatusSeeOther, listURL(prestamosList.path, term, page))
}

// RegistroMaterialPage は GET /admin/registro-material のハンドラーです。
func (h *Handler) RegistroMaterialPage(c *gin.Context) {
	h.renderRegistroMaterial(c, http.StatusOK, model.MaterialForm{Tipo: model.MaterialLibro}, "", nil)
}

// RegistroMaterial は POST /admin/registro-material のハンドラーです。
func (h *Handler) RegistroMaterial(c *gin.Context) {
	var form model.MaterialForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegistroMaterial(c, http.StatusBadRequest, form, "Solicitud no válida.", nil)
		return
	}

	if _, err := h.svc.RegisterMaterial(c.Request.Context(), form); err != nil {
		message, fields := formErrors(err, "Error al registrar el material. Por favor, intente nuevamente.")
		h.logWriteFailure(c, err, "failed to register material")
		h.renderRegistroMaterial(c, writeStatus(err), form, message, fields)
		return
	}

	h.setFlash(c, "Material registrado correctamente.")
	c.Redirect(http.StatusSeeOther, materialesList.path)
}

func (h *Handler) renderRegistroMaterial(c *gin.Context, status int, form model.MaterialForm, message string, fields model.FieldErrors) {
	if fields == nil {
		fields = model.FieldErrors{}
	}
	h.render(c, status, pageRegistroMat, "Registrar Material", gin.H{
		"Form":   form,
		"Kinds":  model.MaterialKinds,
		"Error":  message,
		"Fields": fields,
	})
}

// RegistroUsuarioPage は GET /admin/registro-usuario のハンドラーです。
func (h *Handler) RegistroUsuarioPage(c *gin.Context) {
	h.renderRegistroUsuario(c, http.StatusOK, model.UsuarioForm{Tipo: model.UsuarioAlumno}, "", nil)
}

// RegistroUsuario は POST /admin/registro-usuario のハンドラーです。
func (h *Handler) RegistroUsuario(c *gin.Context) {
	var form model.UsuarioForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegistroUsuario(c, http.StatusBadRequest, form, "Solicitud no válida.", nil)
		return
	}

	if _, err := h.svc.RegisterUsuario(c.Request.Context(), form); err != nil {
		message, fields := formErrors(err, "Error al registrar el usuario. Por favor, intente nuevamente.")
		h.logWriteFailure(c, err, "failed to register user")
		h.renderRegistroUsuario(c, writeStatus(err), form, message, fields)
		return
	}

	h.setFlash(c, "Usuario registrado correctamente.")
	c.Redirect(http.StatusSeeOther, usuariosList.path)
}

func (h *Handler) renderRegistroUsuario(c *gin.Context, status int, form model.UsuarioForm, message string, fields model.FieldErrors) {
	if fields == nil {
		fields = model.FieldErrors{}
	}
	// パスワードは再表示しない
	form.Password = ""
	h.render(c, status, pageRegistroUsuario, "Registrar Usuario", gin.H{
		"Form":   form,
		"Kinds":  model.UsuarioKinds,
		"Error":  message,
		"Fields": fields,
	})
}

// RegistroPrestamoPage は GET /admin/registro-prestamo のハンドラーです。
func (h *Handler) RegistroPrestamoPage(c *gin.Context) {
	form := model.PrestamoForm{FechaPrestamo: h.svc.Today().String()}
	h.renderRegistroPrestamo(c, http.StatusOK, form, "", nil)
}

// RegistroPrestamo は POST /admin/registro-prestamo のハンドラーです。
func (h *Handler) RegistroPrestamo(c *gin.Context) {
	var form model.PrestamoForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegistroPrestamo(c, http.StatusBadRequest, form, "Solicitud no válida.", nil)
		return
	}

	if _, err := h.svc.RegisterPrestamo(c.Request.Context(), form); err != nil {
		message, fields := formErrors(err, "Error al registrar el préstamo. Por favor, intente nuevamente.")
		h.logWriteFailure(c, err, "failed to register loan")
		h.renderRegistroPrestamo(c, writeStatus(err), form, message, fields)
		return
	}

	h.setFlash(c, "Préstamo registrado correctamente.")
	c.Redirect(http.StatusSeeOther, prestamosList.path)
}

// renderRegistroPrestamo は選択肢を読み込んでフォームを描画します。読み込みに失敗した場合はフォームを出しません。
func (h *Handler) renderRegistroPrestamo(c *gin.Context, status int, form model.PrestamoForm, message string, fields model.FieldErrors) {
	options, err := h.svc.LoanFormOptions(c.Request.Context())
	if err != nil {
		h.readError(c, err, "Registrar Préstamo", msgErrorNecesario)
		return
	}
	if fields == nil {
		fields = model.FieldErrors{}
	}
	h.render(c, status, pageRegistroPrest, "Registrar Préstamo", gin.H{
		"Form":    form,
		"Options": options,
		"Error":   message,
		"Fields":  fields,
	})
}

func (h *Handler) logWriteFailure(c *gin.Context, err error, msg string) {
	if _, ok := model.AsValidationError(err); ok {
		return
	}
	h.log(c).WithError(err).Error(msg)
}
