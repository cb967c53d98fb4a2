package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestSplitKeywords(t *testing.T) {
	got := SplitKeywords(" redes , ,seguridad,  go ,")
	want := []string{"redes", "seguridad", "go"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected keywords: %#v", got)
	}

	empty := SplitKeywords("  , ,")
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestSplitKeywordsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.StringMatching(`[a-z ,]{0,40}`).Draw(t, "raw")
		got := SplitKeywords(raw)

		for _, kw := range got {
			if kw == "" || kw != strings.TrimSpace(kw) || strings.Contains(kw, ",") {
				t.Fatalf("keyword %q is not normalized (raw %q)", kw, raw)
			}
		}
		// 再分割しても同じ結果になる
		again := SplitKeywords(strings.Join(got, ","))
		if strings.Join(again, ",") != strings.Join(got, ",") {
			t.Fatalf("split is not stable: %#v vs %#v", got, again)
		}
	})
}

func TestMaterialRecordDecodesVariant(t *testing.T) {
	body := `{"id":"M1","titulo":"Go","autor":"Pike","anioPublicacion":2015,"idioma":"es",
		"palabrasClave":["go"],"isbn":"123","ejemplaresDisponibles":2,"editorial":"AW",
		"numeroPaginas":300,"genero":"tec"}`
	var rec MaterialRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Kind() != MaterialLibro {
		t.Fatalf("expected libro, got %q", rec.Kind())
	}
	if rec.ISBN != "123" || rec.NumeroPaginas != 300 || rec.Titulo != "Go" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}

	var tesis MaterialRecord
	if err := json.Unmarshal([]byte(`{"id":"T1","titulo":"X","grado":"Maestría","asesor":"Ruiz"}`), &tesis); err != nil {
		t.Fatalf("unmarshal tesis: %v", err)
	}
	if tesis.Kind() != MaterialTesis || tesis.Asesor != "Ruiz" {
		t.Fatalf("unexpected tesis: %+v", tesis)
	}

	var plain MaterialRecord
	if err := json.Unmarshal([]byte(`{"id":"P1","titulo":"X"}`), &plain); err != nil {
		t.Fatalf("unmarshal plain: %v", err)
	}
	if plain.Kind() != "" {
		t.Fatalf("expected unknown kind, got %q", plain.Kind())
	}
}

func TestMaterialRecordRejectsBothVariants(t *testing.T) {
	rec := MaterialRecord{LibroFields: &LibroFields{}, TesisFields: &TesisFields{}}
	if !errors.Is(rec.Validate(), ErrAmbiguousMaterial) {
		t.Fatalf("expected ErrAmbiguousMaterial")
	}
	if rec.Kind() != "" {
		t.Fatalf("ambiguous record must not report a kind")
	}
}

func TestRecordsIgnoreNullVariantKeys(t *testing.T) {
	var libro MaterialRecord
	body := `{"id":"M1","titulo":"Go","isbn":"123","ejemplaresDisponibles":2,"editorial":"AW",
		"numeroPaginas":300,"genero":"tec","grado":null,"areaInvestigacion":null,"universidad":null,"asesor":null}`
	if err := json.Unmarshal([]byte(body), &libro); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if libro.Kind() != MaterialLibro || libro.TesisFields != nil {
		t.Fatalf("expected libro only, got %+v", libro)
	}
	if err := libro.Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}

	var alumno UsuarioRecord
	body = `{"id":"U1","nombre":"Ana","codigoMatricula":"A1","escuela":"Sistemas","anioIngreso":2020,"cicloActual":5,
		"codigoDocente":null,"area":null,"tipoDeContrato":null,"gradoAcademico":null,"dni":null,"institucionProcedencia":null}`
	if err := json.Unmarshal([]byte(body), &alumno); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if alumno.Kind() != UsuarioAlumno || alumno.CicloActual != 5 || alumno.Nombre != "Ana" {
		t.Fatalf("expected alumno only, got %+v", alumno)
	}

	var both MaterialRecord
	if err := json.Unmarshal([]byte(`{"id":"X","isbn":"1","grado":"Maestría"}`), &both); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !errors.Is(both.Validate(), ErrAmbiguousMaterial) {
		t.Fatalf("non-null keys of both variants must stay ambiguous: %+v", both)
	}
}

func TestUsuarioRecordKind(t *testing.T) {
	var rec UsuarioRecord
	if err := json.Unmarshal([]byte(`{"id":"U1","nombre":"Ana","dni":"123","institucionProcedencia":"UNI"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Kind() != UsuarioExterno || rec.DNI != "123" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestEstadoDecodingIsCaseInsensitive(t *testing.T) {
	var p Prestamo
	if err := json.Unmarshal([]byte(`{"idPrestamo":"P1","estado":"Activo","fechaPrestamo":"2024-03-01T10:20:00Z"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Estado != EstadoActivo {
		t.Fatalf("unexpected estado: %q", p.Estado)
	}
	if p.FechaPrestamo.String() != "2024-03-01" {
		t.Fatalf("unexpected date: %s", p.FechaPrestamo)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"estado":"ACTIVO"`) || !strings.Contains(string(out), `"fechaPrestamo":"2024-03-01"`) {
		t.Fatalf("unexpected encoding: %s", out)
	}
	if strings.Contains(string(out), "fechaDevolucionReal") {
		t.Fatalf("unset return date must be omitted: %s", out)
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, raw := range []string{"2024-05-06", "2024-05-06T23:59:59", "2024-05-06T08:00:00.000Z", "2024-05-06T08:00:00-05:00"} {
		d, err := ParseDate(raw)
		if err != nil {
			t.Fatalf("ParseDate(%q) returned error: %v", raw, err)
		}
		if d.String() != "2024-05-06" {
			t.Fatalf("ParseDate(%q) = %s", raw, d)
		}
	}
	if _, err := ParseDate("06/05/2024"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestPrestamoReturned(t *testing.T) {
	today := NewDate(time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC))
	p := Prestamo{IDPrestamo: "P1", Estado: EstadoActivo}

	returned, err := p.Returned(today)
	if err != nil {
		t.Fatalf("Returned: %v", err)
	}
	if returned.Estado != EstadoDevuelto || returned.FechaDevolucionReal == nil || returned.FechaDevolucionReal.String() != "2024-06-10" {
		t.Fatalf("unexpected returned loan: %+v", returned)
	}
	if err := returned.Validate(); err != nil {
		t.Fatalf("returned loan must be consistent: %v", err)
	}
	if p.Estado != EstadoActivo || p.FechaDevolucionReal != nil {
		t.Fatal("original loan must not change")
	}

	for _, estado := range []Estado{EstadoDevuelto, EstadoVencido} {
		if _, err := (Prestamo{Estado: estado}).Returned(today); !errors.Is(err, ErrNotReturnable) {
			t.Fatalf("estado %s: expected ErrNotReturnable, got %v", estado, err)
		}
	}
}

func TestPrestamoValidate(t *testing.T) {
	d := NewDate(time.Now())
	if !errors.Is((Prestamo{Estado: EstadoDevuelto}).Validate(), ErrInconsistentReturn) {
		t.Fatal("DEVUELTO without return date must be inconsistent")
	}
	if !errors.Is((Prestamo{Estado: EstadoActivo, FechaDevolucionReal: &d}).Validate(), ErrInconsistentReturn) {
		t.Fatal("ACTIVO with return date must be inconsistent")
	}
	p := Prestamo{
		Estado:                  EstadoActivo,
		FechaPrestamo:           d,
		FechaDevolucionEsperada: NewDate(d.AddDate(0, 0, -1)),
	}
	if !errors.Is(p.Validate(), ErrReturnBeforeLoan) {
		t.Fatal("expected ErrReturnBeforeLoan")
	}
}

func TestMaterialFormDraftLibro(t *testing.T) {
	form := MaterialForm{
		Tipo: MaterialLibro,
		MaterialComun: MaterialComun{
			Titulo: "  El Quijote ", Autor: "Cervantes", AnioPublicacion: "1605",
			Idioma: "es", PalabrasClave: "novela, clásico,",
		},
		LibroInput: LibroInput{
			ISBN: "978", EjemplaresDisponibles: "3", Editorial: "Alfaguara",
			NumeroPaginas: "863", Genero: "novela",
		},
	}
	draft, err := form.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	libro, ok := draft.(*LibroDraft)
	if !ok {
		t.Fatalf("expected *LibroDraft, got %T", draft)
	}
	if libro.Titulo != "El Quijote" || libro.AnioPublicacion != 1605 || libro.NumeroPaginas != 863 {
		t.Fatalf("unexpected draft: %+v", libro)
	}
	if len(libro.PalabrasClave) != 2 || libro.PalabrasClave[1] != "clásico" {
		t.Fatalf("unexpected keywords: %#v", libro.PalabrasClave)
	}

	out, _ := json.Marshal(draft)
	if strings.Contains(string(out), `"id"`) {
		t.Fatalf("draft must not carry an id: %s", out)
	}
}

func TestMaterialFormDraftIgnoresOtherVariant(t *testing.T) {
	form := MaterialForm{
		Tipo: MaterialTesis,
		MaterialComun: MaterialComun{
			Titulo: "Redes", Autor: "Ruiz", AnioPublicacion: "2020", Idioma: "es",
		},
		TesisInput: TesisInput{Grado: "Maestría", AreaInvestigacion: "Redes", Universidad: "UNI", Asesor: "Paz"},
	}
	draft, err := form.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if draft.Kind() != MaterialTesis {
		t.Fatalf("unexpected kind %q", draft.Kind())
	}
}

func TestMaterialFormValidation(t *testing.T) {
	cases := []struct {
		name  string
		form  MaterialForm
		field string
	}{
		{
			name:  "blank titulo",
			form:  MaterialForm{Tipo: MaterialLibro, MaterialComun: MaterialComun{Titulo: "   ", Autor: "a", AnioPublicacion: "2000", Idioma: "es"}},
			field: "titulo",
		},
		{
			name:  "non numeric year",
			form:  MaterialForm{Tipo: MaterialTesis, MaterialComun: MaterialComun{Titulo: "t", Autor: "a", AnioPublicacion: "dos mil", Idioma: "es"}},
			field: "anioPublicacion",
		},
		{
			name: "missing libro field",
			form: MaterialForm{
				Tipo:          MaterialLibro,
				MaterialComun: MaterialComun{Titulo: "t", Autor: "a", AnioPublicacion: "2000", Idioma: "es"},
				LibroInput:    LibroInput{ISBN: "1", EjemplaresDisponibles: "1", Editorial: "e", NumeroPaginas: "10"},
			},
			field: "genero",
		},
		{
			name: "zero pages",
			form: MaterialForm{
				Tipo:          MaterialLibro,
				MaterialComun: MaterialComun{Titulo: "t", Autor: "a", AnioPublicacion: "2000", Idioma: "es"},
				LibroInput:    LibroInput{ISBN: "1", EjemplaresDisponibles: "1", Editorial: "e", NumeroPaginas: "0", Genero: "g"},
			},
			field: "numeroPaginas",
		},
		{
			name:  "unknown tipo",
			form:  MaterialForm{Tipo: "revista", MaterialComun: MaterialComun{Titulo: "t", Autor: "a", AnioPublicacion: "2000", Idioma: "es"}},
			field: "tipo",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.form.Draft()
			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, exists := ve.Fields[tc.field]; !exists {
				t.Fatalf("expected error on %s, got %v", tc.field, ve.Fields)
			}
			if ve.Message == "" {
				t.Fatal("expected a form level message")
			}
		})
	}
}

func TestFormValidationListsSharedAndVariantFields(t *testing.T) {
	_, err := MaterialForm{
		Tipo:          MaterialTesis,
		MaterialComun: MaterialComun{Autor: "a", AnioPublicacion: "2000", Idioma: "es"},
		TesisInput:    TesisInput{Grado: "Maestría", Universidad: "UNI"},
	}.Draft()
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"titulo", "areaInvestigacion", "asesor"} {
		if ve.Fields[field] == "" {
			t.Errorf("expected error on %s, got %v", field, ve.Fields)
		}
	}
	if ve.Message != msgCamposObligatorios {
		t.Fatalf("unexpected message: %q", ve.Message)
	}

	_, err = MaterialForm{
		Tipo:          MaterialTesis,
		MaterialComun: MaterialComun{Titulo: "t", Autor: "a", AnioPublicacion: "2000", Idioma: "es"},
	}.Draft()
	ve, ok = AsValidationError(err)
	if !ok || !strings.Contains(ve.Message, "tesis") {
		t.Fatalf("expected tesis specific message, got %v", err)
	}

	_, err = UsuarioForm{
		Tipo:         UsuarioExterno,
		UsuarioComun: UsuarioComun{Nombre: "Ana", Telefono: "1", Direccion: "x", Password: "p"},
	}.Registration()
	ve, ok = AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "dni", "institucionProcedencia"} {
		if ve.Fields[field] == "" {
			t.Errorf("expected error on %s, got %v", field, ve.Fields)
		}
	}
	if _, exists := ve.Fields["codigoMatricula"]; exists {
		t.Fatalf("fields of other variants must not be validated: %v", ve.Fields)
	}
}

func TestUsuarioFormRegistration(t *testing.T) {
	form := UsuarioForm{
		Tipo:         UsuarioDocente,
		UsuarioComun: UsuarioComun{Nombre: "Luis", Email: "luis@uni.edu", Telefono: "999", Direccion: "Av. 1", Password: " s3cret "},
		DocenteInput: DocenteInput{CodigoDocente: "D1", Area: "TI", TipoDeContrato: "completo", GradoAcademico: "Dr."},
	}
	reg, err := form.Registration()
	if err != nil {
		t.Fatalf("Registration: %v", err)
	}
	docente, ok := reg.(*DocenteRegistration)
	if !ok {
		t.Fatalf("expected *DocenteRegistration, got %T", reg)
	}
	if docente.Type != UsuarioDocente || docente.Password != " s3cret " {
		t.Fatalf("unexpected registration: %+v", docente)
	}

	out, _ := json.Marshal(reg)
	if !strings.Contains(string(out), `"type":"docente"`) || !strings.Contains(string(out), `"codigoDocente":"D1"`) {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestUsuarioFormValidation(t *testing.T) {
	_, err := UsuarioForm{
		Tipo:         UsuarioAlumno,
		UsuarioComun: UsuarioComun{Nombre: "Ana", Email: "no-es-correo", Telefono: "1", Direccion: "x", Password: "p"},
	}.Registration()
	ve, ok := AsValidationError(err)
	if !ok || ve.Fields["email"] == "" {
		t.Fatalf("expected email error, got %v", err)
	}

	_, err = UsuarioForm{
		Tipo:         UsuarioAlumno,
		UsuarioComun: UsuarioComun{Nombre: "Ana", Email: "ana@uni.edu", Telefono: "1", Direccion: "x", Password: "   "},
	}.Registration()
	ve, ok = AsValidationError(err)
	if !ok || ve.Fields["password"] == "" {
		t.Fatalf("expected password error, got %v", err)
	}

	_, err = UsuarioForm{
		Tipo:         UsuarioAlumno,
		UsuarioComun: UsuarioComun{Nombre: "Ana", Email: "ana@uni.edu", Telefono: "1", Direccion: "x", Password: "p"},
		AlumnoInput:  AlumnoInput{CodigoMatricula: "A1", Escuela: "Sistemas", AnioIngreso: "2020", CicloActual: "quinto"},
	}.Registration()
	ve, ok = AsValidationError(err)
	if !ok || ve.Fields["cicloActual"] == "" {
		t.Fatalf("expected cicloActual error, got %v", err)
	}
}

func TestPrestamoFormDraft(t *testing.T) {
	p, err := PrestamoForm{
		MaterialID: "M1", UsuarioID: "U1",
		FechaPrestamo: "2024-06-01", FechaDevolucionEsperada: "2024-06-15",
	}.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if p.Estado != EstadoActivo || p.IDPrestamo != "" || p.FechaDevolucionReal != nil {
		t.Fatalf("unexpected draft: %+v", p)
	}

	_, err = PrestamoForm{
		MaterialID: "M1", UsuarioID: "U1",
		FechaPrestamo: "2024-06-15", FechaDevolucionEsperada: "2024-06-01",
	}.Draft()
	ve, ok := AsValidationError(err)
	if !ok || ve.Fields["fechaDevolucionEsperada"] == "" {
		t.Fatalf("expected date order error, got %v", err)
	}

	_, err = PrestamoForm{MaterialID: "M1", FechaPrestamo: "01/06/2024"}.Draft()
	ve, ok = AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"usuarioId", "fechaPrestamo", "fechaDevolucionEsperada"} {
		if ve.Fields[field] == "" {
			t.Fatalf("expected error on %s, got %v", field, ve.Fields)
		}
	}
}
