package model

import (
	"reflect"
	"strconv"
	"strings"
)

const msgCamposObligatorios = "Por favor complete todos los campos obligatorios."

// MaterialComun は資料登録フォームの共通項目です。
type MaterialComun struct {
	Titulo          string `form:"titulo" validate:"required"`
	Autor           string `form:"autor" validate:"required"`
	AnioPublicacion string `form:"anioPublicacion" validate:"required,number"`
	Idioma          string `form:"idioma" validate:"required"`
	PalabrasClave   string `form:"palabrasClave"`
}

// LibroInput は書籍の入力項目です。
type LibroInput struct {
	ISBN                  string `form:"isbn" validate:"required"`
	EjemplaresDisponibles string `form:"ejemplaresDisponibles" validate:"required,number"`
	Editorial             string `form:"editorial" validate:"required"`
	NumeroPaginas         string `form:"numeroPaginas" validate:"required,number"`
	Genero                string `form:"genero" validate:"required"`
}

// TesisInput は論文の入力項目です。
type TesisInput struct {
	Grado             string `form:"grado" validate:"required"`
	AreaInvestigacion string `form:"areaInvestigacion" validate:"required"`
	Universidad       string `form:"universidad" validate:"required"`
	Asesor            string `form:"asesor" validate:"required"`
}

// MaterialForm は資料登録フォームの入力値をそのまま保持します。
type MaterialForm struct {
	Tipo MaterialKind `form:"tipo"`
	MaterialComun
	LibroInput
	TesisInput
}

// Draft は入力を検証して登録DTOを組み立てます。
// 検証は共通項目と選択された種別の項目だけが対象です。
func (f MaterialForm) Draft() (MaterialDraft, error) {
	trimStrings(&f)
	if f.Tipo == "" {
		f.Tipo = MaterialLibro
	}

	var (
		variant FieldErrors
		message string
	)
	switch f.Tipo {
	case MaterialLibro:
		variant = ValidateStruct(&f.LibroInput)
		message = "Por favor complete todos los campos obligatorios para el libro."
	case MaterialTesis:
		variant = ValidateStruct(&f.TesisInput)
		message = "Por favor complete todos los campos obligatorios para la tesis."
	default:
		variant = FieldErrors{"tipo": "Seleccione un tipo de material válido."}
		message = msgCamposObligatorios
	}
	errs, message := mergeFieldErrors(ValidateStruct(&f.MaterialComun), variant, message)
	if len(errs) > 0 {
		return nil, &ValidationError{Message: message, Fields: errs}
	}

	base := Material{
		Titulo:          f.Titulo,
		Autor:           f.Autor,
		AnioPublicacion: parseInt(errs, "anioPublicacion", f.AnioPublicacion),
		Idioma:          f.Idioma,
		PalabrasClave:   SplitKeywords(f.PalabrasClave),
	}

	var draft MaterialDraft
	switch f.Tipo {
	case MaterialLibro:
		libro := LibroFields{
			ISBN:                  f.ISBN,
			EjemplaresDisponibles: parseInt(errs, "ejemplaresDisponibles", f.EjemplaresDisponibles),
			Editorial:             f.Editorial,
			NumeroPaginas:         parseInt(errs, "numeroPaginas", f.NumeroPaginas),
			Genero:                f.Genero,
		}
		if _, failed := errs["numeroPaginas"]; !failed && libro.NumeroPaginas <= 0 {
			errs["numeroPaginas"] = "Debe ser mayor que cero."
		}
		draft = &LibroDraft{Material: base, LibroFields: libro}
	case MaterialTesis:
		draft = &TesisDraft{Material: base, TesisFields: TesisFields{
			Grado:             f.Grado,
			AreaInvestigacion: f.AreaInvestigacion,
			Universidad:       f.Universidad,
			Asesor:            f.Asesor,
		}}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Message: "Revise los valores ingresados.", Fields: errs}
	}
	return draft, nil
}

// UsuarioComun は利用者登録フォームの共通項目です。
type UsuarioComun struct {
	Nombre    string `form:"nombre" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Telefono  string `form:"telefono" validate:"required"`
	Direccion string `form:"direccion" validate:"required"`
	Password  string `form:"password" validate:"required"`
}

// AlumnoInput は学生の入力項目です。
type AlumnoInput struct {
	CodigoMatricula string `form:"codigoMatricula" validate:"required"`
	Escuela         string `form:"escuela" validate:"required"`
	AnioIngreso     string `form:"anioIngreso" validate:"required,number"`
	CicloActual     string `form:"cicloActual" validate:"required,number"`
}

// DocenteInput は教員の入力項目です。
type DocenteInput struct {
	CodigoDocente  string `form:"codigoDocente" validate:"required"`
	Area           string `form:"area" validate:"required"`
	TipoDeContrato string `form:"tipoDeContrato" validate:"required"`
	GradoAcademico string `form:"gradoAcademico" validate:"required"`
}

// ExternoInput は学外利用者の入力項目です。
type ExternoInput struct {
	DNI                    string `form:"dni" validate:"required"`
	InstitucionProcedencia string `form:"institucionProcedencia" validate:"required"`
}

// UsuarioForm は利用者登録フォームの入力値をそのまま保持します。
type UsuarioForm struct {
	Tipo UsuarioKind `form:"tipo"`
	UsuarioComun
	AlumnoInput
	DocenteInput
	ExternoInput
}

// Registration は入力を検証して登録DTOを組み立てます。
func (f UsuarioForm) Registration() (UsuarioRegistration, error) {
	// パスワードは空白の確認だけ行い、入力どおりに送る
	password := f.Password
	trimStrings(&f)
	if f.Tipo == "" {
		f.Tipo = UsuarioAlumno
	}

	var (
		variant FieldErrors
		message string
	)
	switch f.Tipo {
	case UsuarioAlumno:
		variant = ValidateStruct(&f.AlumnoInput)
		message = "Por favor complete todos los campos obligatorios para el alumno."
	case UsuarioDocente:
		variant = ValidateStruct(&f.DocenteInput)
		message = "Por favor complete todos los campos obligatorios para el docente."
	case UsuarioExterno:
		variant = ValidateStruct(&f.ExternoInput)
		message = "Por favor complete todos los campos obligatorios para el usuario externo."
	default:
		variant = FieldErrors{"tipo": "Seleccione un tipo de usuario válido."}
		message = msgCamposObligatorios
	}
	errs, message := mergeFieldErrors(ValidateStruct(&f.UsuarioComun), variant, message)
	if len(errs) > 0 {
		return nil, &ValidationError{Message: message, Fields: errs}
	}

	common := Registro{
		Nombre:    f.Nombre,
		Email:     f.Email,
		Telefono:  f.Telefono,
		Direccion: f.Direccion,
		Password:  password,
	}

	var reg UsuarioRegistration
	switch f.Tipo {
	case UsuarioAlumno:
		reg = &AlumnoRegistration{Registro: common, Type: UsuarioAlumno, AlumnoFields: AlumnoFields{
			CodigoMatricula: f.CodigoMatricula,
			Escuela:         f.Escuela,
			AnioIngreso:     parseInt(errs, "anioIngreso", f.AnioIngreso),
			CicloActual:     parseInt(errs, "cicloActual", f.CicloActual),
		}}
	case UsuarioDocente:
		reg = &DocenteRegistration{Registro: common, Type: UsuarioDocente, DocenteFields: DocenteFields{
			CodigoDocente:  f.CodigoDocente,
			Area:           f.Area,
			TipoDeContrato: f.TipoDeContrato,
			GradoAcademico: f.GradoAcademico,
		}}
	case UsuarioExterno:
		reg = &ExternoRegistration{Registro: common, Type: UsuarioExterno, ExternoFields: ExternoFields{
			DNI:                    f.DNI,
			InstitucionProcedencia: f.InstitucionProcedencia,
		}}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Message: "Revise los valores ingresados.", Fields: errs}
	}
	return reg, nil
}

// PrestamoForm は貸出登録フォームの入力値です。
type PrestamoForm struct {
	MaterialID              string `form:"materialId" validate:"required"`
	UsuarioID               string `form:"usuarioId" validate:"required"`
	FechaPrestamo           string `form:"fechaPrestamo" validate:"required,datetime=2006-01-02"`
	FechaDevolucionEsperada string `form:"fechaDevolucionEsperada" validate:"required,datetime=2006-01-02"`
}

// Draft は入力を検証して ACTIVO の新規貸出を組み立てます。
func (f PrestamoForm) Draft() (Prestamo, error) {
	trimStrings(&f)

	errs := ValidateStruct(&f)
	if len(errs) > 0 {
		return Prestamo{}, &ValidationError{Message: msgCamposObligatorios, Fields: errs}
	}

	// datetime タグで形式は確認済み
	desde, _ := ParseDate(f.FechaPrestamo)
	hasta, _ := ParseDate(f.FechaDevolucionEsperada)
	if hasta.Before(desde) {
		return Prestamo{}, &ValidationError{
			Message: "La fecha de devolución no puede ser anterior a la fecha de préstamo.",
			Fields:  FieldErrors{"fechaDevolucionEsperada": "Debe ser igual o posterior a la fecha de préstamo."},
		}
	}

	return Prestamo{
		MaterialID:              f.MaterialID,
		UsuarioID:               f.UsuarioID,
		FechaPrestamo:           desde,
		FechaDevolucionEsperada: hasta,
		Estado:                  EstadoActivo,
	}, nil
}

// mergeFieldErrors は共通項目と種別項目のエラーをまとめます。
// 種別ごとのメッセージは共通項目に誤りがないときだけ使います。
func mergeFieldErrors(shared, variant FieldErrors, variantMessage string) (FieldErrors, string) {
	message := msgCamposObligatorios
	if len(shared) == 0 {
		message = variantMessage
	}
	for field, msg := range variant {
		shared[field] = msg
	}
	return shared, message
}

// parseInt は number タグで検証済みの値を変換します。範囲外なら errs に記録します。
func parseInt(errs FieldErrors, field, raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[field] = "El número está fuera de rango."
		return 0
	}
	return n
}

// trimStrings は構造体（埋め込みを含む）の文字列項目の前後の空白を取り除きます。
func trimStrings(ptr any) {
	trimValue(reflect.ValueOf(ptr).Elem())
}

func trimValue(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case reflect.Struct:
			trimValue(field)
		}
	}
}
