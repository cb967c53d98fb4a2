package web

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/biblioteca-web/internal/auth"
	"github.com/yourusername/biblioteca-web/internal/library"
	"github.com/yourusername/biblioteca-web/internal/listing"
)

const (
	catalogoPath     = "/user/catalogo"
	misPrestamosPath = "/user/mis-prestamos"
)

// UserDashboard は GET /user/dashboard のハンドラーです。
func (h *Handler) UserDashboard(c *gin.Context) {
	id := auth.SessionFrom(c).Current().SubjectID
	dashboard, err := h.svc.UserDashboard(c.Request.Context(), id)
	if err != nil {
		h.readError(c, err, "Dashboard", msgErrorDatos)
		return
	}
	h.render(c, http.StatusOK, pageUserDashboard, "Dashboard", gin.H{"Dashboard": dashboard})
}

// Catalogo は GET /user/catalogo のハンドラーです。タイトル・著者の検索と言語で絞り込みます。
func (h *Handler) Catalogo(c *gin.Context) {
	materiales, err := h.svc.Materiales(c.Request.Context())
	if err != nil {
		h.readError(c, err, "Catálogo", "Error al cargar el catálogo. Por favor, intente nuevamente.")
		return
	}

	term, page := listState(c)
	idioma := c.DefaultQuery("idioma", library.TodosLosIdiomas)
	filtered := library.FilterCatalogo(materiales, term, idioma)
	p := listing.Paginate(filtered, page, h.catalogPerPage)

	h.render(c, http.StatusOK, pageCatalogo, "Catálogo", gin.H{
		"Page":     p,
		"Pager":    newPager(catalogoPath, url.Values{"q": {term}, "idioma": {idioma}}, p),
		"Query":    term,
		"Idioma":   idioma,
		"Idiomas":  library.Idiomas(materiales),
		"ListPath": catalogoPath,
	})
}

// MisPrestamos は GET /user/mis-prestamos のハンドラーです。資料タイトルで検索します。
func (h *Handler) MisPrestamos(c *gin.Context) {
	id := auth.SessionFrom(c).Current().SubjectID
	prestamos, materiales, err := h.svc.MisPrestamos(c.Request.Context(), id)
	if err != nil {
		h.readError(c, err, "Mis Préstamos", "Error al cargar los préstamos. Por favor, intente nuevamente.")
		return
	}

	term, page := listState(c)
	views := library.FilterLoanViews(library.LoanViews(prestamos, materiales), term)
	p := listing.Paginate(views, page, h.rowsPerPage)

	h.render(c, http.StatusOK, pageMisPrestamos, "Mis Préstamos", gin.H{
		"Page":     p,
		"Pager":    newPager(misPrestamosPath, url.Values{"q": {term}}, p),
		"Query":    term,
		"ListPath": misPrestamosPath,
	})
}
