package auth

import "testing"

func TestAuthorize(t *testing.T) {
	anon := Session{}
	user := Session{Authenticated: true, Role: RoleUsuario, SubjectID: "U1"}
	admin := Session{Authenticated: true, Role: RoleAdmin, SubjectID: "admin"}

	cases := []struct {
		name     string
		session  Session
		path     string
		allow    bool
		redirect string
	}{
		{"public login", anon, "/login", true, ""},
		{"public root", anon, "/", true, ""},
		{"anon admin", anon, "/admin/materiales", false, "/login?from=%2Fadmin%2Fmateriales"},
		{"anon user", anon, "/user/dashboard", false, "/login?from=%2Fuser%2Fdashboard"},
		{"anon admin root", anon, "/admin", false, "/login?from=%2Fadmin"},
		{"admin in admin", admin, "/admin/prestamos", true, ""},
		{"user in user", user, "/user/catalogo", true, ""},
		{"user in admin", user, "/admin/dashboard", false, "/user/dashboard"},
		{"admin in user", admin, "/user/mis-prestamos", false, "/admin/dashboard"},
		{"prefix lookalike", anon, "/administracion", true, ""},
		{"user lookalike", anon, "/users", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Authorize(tc.session, tc.path)
			if got.Allow != tc.allow || got.Redirect != tc.redirect {
				t.Fatalf("Authorize(%+v, %q) = %+v", tc.session, tc.path, got)
			}
		})
	}
}

func TestWrongRoleNeverRedirectsToLogin(t *testing.T) {
	for _, s := range []Session{
		{Authenticated: true, Role: RoleUsuario, SubjectID: "U1"},
		{Authenticated: true, Role: RoleAdmin, SubjectID: "admin"},
	} {
		for _, path := range []string{"/admin/dashboard", "/user/dashboard", "/admin/x/y", "/user"} {
			d := Authorize(s, path)
			if !d.Allow && d.Redirect == LoginPath {
				t.Fatalf("authenticated %s sent to login for %s", s.Role, path)
			}
		}
	}
}

func TestReturnPath(t *testing.T) {
	cases := []struct {
		role Role
		from string
		want string
	}{
		{RoleAdmin, "", "/admin/dashboard"},
		{RoleAdmin, "/admin/materiales?search=go&page=2", "/admin/materiales?search=go&page=2"},
		{RoleAdmin, "/user/dashboard", "/admin/dashboard"},
		{RoleUsuario, "/user/catalogo", "/user/catalogo"},
		{RoleUsuario, "//evil.example/user", "/user/dashboard"},
		{RoleUsuario, "https://evil.example/user/x", "/user/dashboard"},
		{RoleUsuario, `/\evil.example`, "/user/dashboard"},
		{RoleUsuario, "/login", "/user/dashboard"},
	}
	for _, tc := range cases {
		if got := ReturnPath(tc.role, tc.from); got != tc.want {
			t.Fatalf("ReturnPath(%s, %q) = %q, want %q", tc.role, tc.from, got, tc.want)
		}
	}
}

func TestHome(t *testing.T) {
	if Home(RoleAdmin) != "/admin/dashboard" || Home(RoleUsuario) != "/user/dashboard" || Home("") != LoginPath {
		t.Fatal("unexpected home paths")
	}
}
