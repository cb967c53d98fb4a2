package model

// UsuarioKind は利用者の種別（判別子）です。
type UsuarioKind string

const (
	UsuarioAlumno  UsuarioKind = "alumno"
	UsuarioDocente UsuarioKind = "docente"
	UsuarioExterno UsuarioKind = "externo"
)

// UsuarioKinds はフォームで選択できる利用者種別の一覧です。
var UsuarioKinds = []UsuarioKind{UsuarioAlumno, UsuarioDocente, UsuarioExterno}

// Valid は既知の種別かどうかを返します。
func (k UsuarioKind) Valid() bool {
	switch k {
	case UsuarioAlumno, UsuarioDocente, UsuarioExterno:
		return true
	default:
		return false
	}
}

// Label は画面表示用の名称を返します。
func (k UsuarioKind) Label() string {
	switch k {
	case UsuarioAlumno:
		return "Alumno"
	case UsuarioDocente:
		return "Docente"
	case UsuarioExterno:
		return "Externo"
	default:
		return "Usuario"
	}
}

// Usuario は全ての利用者に共通する項目です。
// FechaRegistro と Estado はサーバー側で設定されます。
type Usuario struct {
	ID            string `json:"id,omitempty"`
	Nombre        string `json:"nombre"`
	Email         string `json:"email"`
	Telefono      string `json:"telefono"`
	Direccion     string `json:"direccion"`
	FechaRegistro string `json:"fechaRegistro,omitempty"`
	Estado        string `json:"estado,omitempty"`
}

// SearchFields は一覧検索の対象となる項目を返します。
func (u Usuario) SearchFields() []string {
	return []string{u.Nombre, u.Email, u.ID}
}

// AlumnoFields は学生固有の項目です。
type AlumnoFields struct {
	CodigoMatricula string `json:"codigoMatricula"`
	Escuela         string `json:"escuela"`
	AnioIngreso     int    `json:"anioIngreso"`
	CicloActual     int    `json:"cicloActual"`
}

// DocenteFields は教員固有の項目です。
type DocenteFields struct {
	CodigoDocente  string `json:"codigoDocente"`
	Area           string `json:"area"`
	TipoDeContrato string `json:"tipoDeContrato"`
	GradoAcademico string `json:"gradoAcademico"`
}

// ExternoFields は学外利用者固有の項目です。
type ExternoFields struct {
	DNI                    string `json:"dni"`
	InstitucionProcedencia string `json:"institucionProcedencia"`
}

// UsuarioRecord はAPIから受け取った利用者です。
type UsuarioRecord struct {
	Usuario
	*AlumnoFields
	*DocenteFields
	*ExternoFields
}

// Kind は保持している種別固有項目から種別を返します。判別できない場合は空文字です。
func (r UsuarioRecord) Kind() UsuarioKind {
	var kind UsuarioKind
	n := 0
	if r.AlumnoFields != nil {
		kind, n = UsuarioAlumno, n+1
	}
	if r.DocenteFields != nil {
		kind, n = UsuarioDocente, n+1
	}
	if r.ExternoFields != nil {
		kind, n = UsuarioExterno, n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// Registro は利用者登録DTOの共通部分です。
type Registro struct {
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
	Password  string `json:"password"`
}

// UsuarioRegistration は利用者登録DTOです。
// AlumnoRegistration・DocenteRegistration・ExternoRegistration のみが実装します。
type UsuarioRegistration interface {
	Kind() UsuarioKind
	Common() Registro
	isUsuarioRegistration()
}

// AlumnoRegistration は POST /api/usuarios/alumno の本文です。
type AlumnoRegistration struct {
	Registro
	AlumnoFields
	Type UsuarioKind `json:"type"`
}

func (*AlumnoRegistration) Kind() UsuarioKind      { return UsuarioAlumno }
func (r *AlumnoRegistration) Common() Registro     { return r.Registro }
func (*AlumnoRegistration) isUsuarioRegistration() {}

// DocenteRegistration は POST /api/usuarios/docente の本文です。
type DocenteRegistration struct {
	Registro
	DocenteFields
	Type UsuarioKind `json:"type"`
}

func (*DocenteRegistration) Kind() UsuarioKind      { return UsuarioDocente }
func (r *DocenteRegistration) Common() Registro     { return r.Registro }
func (*DocenteRegistration) isUsuarioRegistration() {}

// ExternoRegistration は POST /api/usuarios/externo の本文です。
type ExternoRegistration struct {
	Registro
	ExternoFields
	Type UsuarioKind `json:"type"`
}

func (*ExternoRegistration) Kind() UsuarioKind      { return UsuarioExterno }
func (r *ExternoRegistration) Common() Registro     { return r.Registro }
func (*ExternoRegistration) isUsuarioRegistration() {}
