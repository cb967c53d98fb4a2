package auth

import (
	"net/url"
	"strings"
)

// LoginPath はログイン画面のパスです。
const LoginPath = "/login"

const (
	adminSection = "/admin"
	userSection  = "/user"
)

// Decision はルート認可の結果です。Allow が false の場合 Redirect に遷移させます。
type Decision struct {
	Allow    bool
	Redirect string
}

// Home はロールごとのダッシュボードのパスを返します。
func Home(role Role) string {
	switch role {
	case RoleAdmin:
		return adminSection + "/dashboard"
	case RoleUsuario:
		return userSection + "/dashboard"
	default:
		return LoginPath
	}
}

// Authorize は path へのアクセス可否を判定します。
//   - /admin 配下は admin、/user 配下は usuario のみ
//   - 未認証なら /login?from=<path>
//   - ロール違いなら自分のダッシュボード
func Authorize(s Session, path string) Decision {
	required, gated := sectionRole(path)
	if !gated {
		return Decision{Allow: true}
	}
	if !s.Authenticated {
		return Decision{Redirect: LoginPath + "?from=" + url.QueryEscape(path)}
	}
	if s.Role != required {
		return Decision{Redirect: Home(s.Role)}
	}
	return Decision{Allow: true}
}

// ReturnPath はログイン後の遷移先を返します。
// from はロール自身のセクション内のローカルパスの場合だけ採用します。
func ReturnPath(role Role, from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return Home(role)
	}
	u, err := url.Parse(from)
	if err != nil || u.IsAbs() || u.Host != "" {
		return Home(role)
	}
	required, gated := sectionRole(u.Path)
	if !gated || required != role {
		return Home(role)
	}
	return u.RequestURI()
}

func sectionRole(path string) (Role, bool) {
	switch {
	case inSection(path, adminSection):
		return RoleAdmin, true
	case inSection(path, userSection):
		return RoleUsuario, true
	default:
		return "", false
	}
}

func inSection(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
