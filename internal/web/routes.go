package web

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/biblioteca-web/internal/auth"
)

// Register は画面のルーティングを登録します。
// セッション復元（auth.Manager.LoadSession）はこれより前に router に登録しておく必要があります。
func Register(router *gin.Engine, m *auth.Manager, h *Handler) {
	// ログイン前はセッションがないので CSRF 検証は行わない
	router.GET(auth.LoginPath, m.LoginPage)
	router.POST(auth.LoginPath, m.Login)
	router.GET("/session", SessionProbe)
	router.GET("/", h.Home)

	gated := router.Group("/", auth.RequireSection(), m.EnsureCSRF(), m.VerifyCSRF())
	gated.POST("/logout", m.Logout)

	admin := gated.Group("/admin")
	{
		admin.GET("/dashboard", h.AdminDashboard)
		admin.GET("/materiales", h.Materiales)
		admin.POST("/materiales/:id/eliminar", h.DeleteMaterial)
		admin.GET("/usuarios", h.Usuarios)
		admin.POST("/usuarios/:id/eliminar", h.DeleteUsuario)
		admin.GET("/prestamos", h.Prestamos)
		admin.POST("/prestamos/:id/eliminar", h.DeletePrestamo)
		admin.POST("/prestamos/:id/devolver", h.ReturnPrestamo)
		admin.GET("/registro-material", h.RegistroMaterialPage)
		admin.POST("/registro-material", h.RegistroMaterial)
		admin.GET("/registro-usuario", h.RegistroUsuarioPage)
		admin.POST("/registro-usuario", h.RegistroUsuario)
		admin.GET("/registro-prestamo", h.RegistroPrestamoPage)
		admin.POST("/registro-prestamo", h.RegistroPrestamo)
	}

	user := gated.Group("/user")
	{
		user.GET("/dashboard", h.UserDashboard)
		user.GET("/catalogo", h.Catalogo)
		user.GET("/mis-prestamos", h.MisPrestamos)
	}

	// 未定義のパスでもセクションの認可は先に行う
	router.NoRoute(auth.RequireSection(), m.EnsureCSRF(), h.NotFound)
}
