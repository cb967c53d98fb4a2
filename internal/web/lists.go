package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/biblioteca-web/internal/listing"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// listDef は検索・ページ分割付き一覧ページの定義です。
type listDef[T any] struct {
	page   string
	title  string
	path   string
	fields func(T) []string
}

var (
	materialesList = listDef[model.MaterialRecord]{
		page:   pageMateriales,
		title:  "Materiales",
		path:   "/admin/materiales",
		fields: model.MaterialRecord.SearchFields,
	}
	usuariosList = listDef[model.UsuarioRecord]{
		page:   pageUsuarios,
		title:  "Usuarios",
		path:   "/admin/usuarios",
		fields: model.UsuarioRecord.SearchFields,
	}
	prestamosList = listDef[model.Prestamo]{
		page:   pagePrestamos,
		title:  "Préstamos",
		path:   "/admin/prestamos",
		fields: model.Prestamo.SearchFields,
	}
)

// listState は一覧の検索語とページ番号を読み取ります。POST では隠しフィールドから読みます。
func listState(c *gin.Context) (string, int) {
	if c.Request.Method == http.MethodGet {
		return c.Query("q"), pageParam(c.Query("page"))
	}
	return c.PostForm("q"), pageParam(c.PostForm("page"))
}

func listURL(path, term string, page int) string {
	q := url.Values{}
	if term != "" {
		q.Set("q", term)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func renderList[T any](h *Handler, c *gin.Context, status int, def listDef[T], items []T, term string, page int, message string) {
	filtered := listing.Filter(items, term, def.fields)
	p := listing.Paginate(filtered, page, h.rowsPerPage)
	h.render(c, status, def.page, def.title, gin.H{
		"Page":     p,
		"Pager":    newPager(def.path, url.Values{"q": {term}}, p),
		"Query":    term,
		"ListPath": def.path,
		"Error":    message,
	})
}

// showList は GET の一覧ページを描画します。
func showList[T any](h *Handler, c *gin.Context, def listDef[T], load func(context.Context) ([]T, error), loadError string) {
	items, err := load(c.Request.Context())
	if err != nil {
		h.readError(c, err, def.title, loadError)
		return
	}
	term, page := listState(c)
	renderList(h, c, http.StatusOK, def, items, term, page, "")
}

// removal は確認付き削除の定義です。
type removal[T any] struct {
	list      listDef[T]
	title     string
	question  string
	load      func(context.Context) ([]T, error)
	loadError string
	remove    func(context.Context, []T, string) ([]T, error)
	failure   string
	success   string
}

// runRemoval は確認ページを挟んで削除します。confirmar=si が無い POST は確認ページを返すだけです。
func runRemoval[T any](h *Handler, c *gin.Context, r removal[T]) {
	term, page := listState(c)
	if !confirmed(c) {
		h.confirm(c, r.title, r.question, r.list.path)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	items, err := r.load(ctx)
	if err != nil {
		h.readError(c, err, r.list.title, r.loadError)
		return
	}

	remaining, err := r.remove(ctx, items, id)
	if err != nil {
		h.log(c).WithError(err).WithField("id", id).Errorf("failed to delete from %s", r.list.path)
		renderList(h, c, writeStatus(err), r.list, remaining, term, page, r.failure)
		return
	}

	h.log(c).WithField("id", id).Infof("deleted from %s", r.list.path)
	h.setFlash(c, r.success)
	c.Redirect(http.StatusSeeOther, listURL(r.list.path, term, page))
}

// confirm は操作の確認ページを描画します。確定時は同じ URL に confirmar=si を付けて POST します。
func (h *Handler) confirm(c *gin.Context, title, question, back string) {
	term, page := listState(c)
	h.render(c, http.StatusOK, pageConfirm, title, gin.H{
		"Question": question,
		"Action":   c.Request.URL.Path,
		"Back":     listURL(back, term, page),
		"Query":    term,
		"Page":     page,
	})
}
