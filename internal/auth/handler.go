package auth

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoginTemplate はログイン画面のテンプレート名です。
const LoginTemplate = "login"

type loginForm struct {
	Tipo      string `form:"tipo"`
	IDUsuario string `form:"idUsuario"`
	Password  string `form:"password"`
	From      string `form:"from"`
}

// LoginPage は GET /login のハンドラーです。ログイン済みならダッシュボードへ移動します。
func (m *Manager) LoginPage(c *gin.Context) {
	if s := SessionFrom(c).Current(); s.Authenticated {
		c.Redirect(http.StatusSeeOther, ReturnPath(s.Role, c.Query("from")))
		return
	}
	m.renderLogin(c, http.StatusOK, loginForm{Tipo: string(RoleUsuario), From: c.Query("from")}, "")
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		m.renderLogin(c, http.StatusBadRequest, form, "Solicitud de inicio de sesión no válida.")
		return
	}
	form.IDUsuario = strings.TrimSpace(form.IDUsuario)

	role, ok := ParseRole(form.Tipo)
	if !ok {
		m.renderLogin(c, http.StatusBadRequest, form, "Seleccione un tipo de usuario válido.")
		return
	}
	if role == RoleUsuario && form.IDUsuario == "" {
		m.renderLogin(c, http.StatusBadRequest, form, "Ingrese su ID de usuario.")
		return
	}
	if strings.TrimSpace(form.Password) == "" {
		m.renderLogin(c, http.StatusBadRequest, form, "Ingrese la contraseña.")
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	log := m.logger.WithFields(logrus.Fields{"client_ip": ip, "role": role})

	retryAfter, err := m.attempts.Locked(ctx, ip)
	if err != nil {
		log.WithError(err).Warn("failed to read login attempts")
	}
	if retryAfter > 0 {
		// Retry-After は秒数で返す
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(retryAfter.Seconds())), 10))
		minutes := int(math.Ceil(retryAfter.Minutes()))
		m.renderLogin(c, http.StatusTooManyRequests, form,
			fmt.Sprintf("Demasiados intentos fallidos. Intente nuevamente en %d minuto(s).", minutes))
		return
	}

	// ログイン成功時の保存で一緒に書き込まれる
	if token, err := generateToken(); err == nil {
		sessions.Default(c).Set(sessionKeyCSRF, token)
	}

	store := SessionFrom(c)
	if err := store.Login(ctx, role, Credentials{IDUsuario: form.IDUsuario, Password: form.Password}); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			remaining, rerr := m.attempts.RecordFailure(ctx, ip)
			if rerr != nil {
				log.WithError(rerr).Warn("failed to record login failure")
			}
			log.WithField("remaining_attempts", remaining).Info("login rejected")
			m.renderLogin(c, http.StatusUnauthorized, form, InvalidCredentialsMessage(role))
			return
		}
		log.WithError(err).Error("login failed")
		m.renderLogin(c, http.StatusBadGateway, form, "No se pudo iniciar sesión. Intente nuevamente.")
		return
	}

	if err := m.attempts.Reset(ctx, ip); err != nil {
		log.WithError(err).Warn("failed to reset login attempts")
	}
	log.Info("login succeeded")
	c.Redirect(http.StatusSeeOther, ReturnPath(role, form.From))
}

// Logout は POST /logout のハンドラーです。
func (m *Manager) Logout(c *gin.Context) {
	sessions.Default(c).Delete(sessionKeyCSRF)
	if err := SessionFrom(c).Logout(); err != nil {
		m.logger.WithError(err).Error("failed to clear session")
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
}

// InvalidCredentialsMessage はロールごとのログイン失敗メッセージを返します。
func InvalidCredentialsMessage(role Role) string {
	if role == RoleAdmin {
		return "Contraseña de administrador incorrecta"
	}
	return "Credenciales inválidas"
}

func (m *Manager) renderLogin(c *gin.Context, status int, form loginForm, message string) {
	c.HTML(status, LoginTemplate, gin.H{
		"Title":     "Iniciar sesión",
		"Session":   Session{},
		"Tipo":      form.Tipo,
		"IDUsuario": form.IDUsuario,
		"From":      form.From,
		"Error":     message,
		"Roles":     []Role{RoleUsuario, RoleAdmin},
	})
}
