// Package model は図書館APIとやり取りするエンティティとDTOを定義します。
package model

import "errors"

// MaterialKind は資料の種別（判別子）です。
type MaterialKind string

const (
	MaterialLibro MaterialKind = "libro"
	MaterialTesis MaterialKind = "tesis"
)

// MaterialKinds はフォームで選択できる資料種別の一覧です。
var MaterialKinds = []MaterialKind{MaterialLibro, MaterialTesis}

// Valid は既知の種別かどうかを返します。
func (k MaterialKind) Valid() bool {
	return k == MaterialLibro || k == MaterialTesis
}

// Label は画面表示用の名称を返します。
func (k MaterialKind) Label() string {
	switch k {
	case MaterialLibro:
		return "Libro"
	case MaterialTesis:
		return "Tesis"
	default:
		return "Material"
	}
}

// ErrAmbiguousMaterial は1件のレコードに複数の種別の項目が入っている場合のエラーです。
var ErrAmbiguousMaterial = errors.New("material carries both libro and tesis fields")

// Material は全ての資料に共通する項目です。
type Material struct {
	ID              string   `json:"id,omitempty"`
	Titulo          string   `json:"titulo"`
	Autor           string   `json:"autor"`
	AnioPublicacion int      `json:"anioPublicacion"`
	Idioma          string   `json:"idioma"`
	PalabrasClave   []string `json:"palabrasClave"`
}

// SearchFields は一覧検索の対象となる項目を返します。
func (m Material) SearchFields() []string {
	return []string{m.Titulo, m.Autor, m.ID}
}

// LibroFields は書籍固有の項目です。
type LibroFields struct {
	ISBN                  string `json:"isbn"`
	EjemplaresDisponibles int    `json:"ejemplaresDisponibles"`
	Editorial             string `json:"editorial"`
	NumeroPaginas         int    `json:"numeroPaginas"`
	Genero                string `json:"genero"`
}

// TesisFields は論文固有の項目です。
type TesisFields struct {
	Grado             string `json:"grado"`
	AreaInvestigacion string `json:"areaInvestigacion"`
	Universidad       string `json:"universidad"`
	Asesor            string `json:"asesor"`
}

// MaterialRecord はAPIから受け取った資料です。
// 種別固有の項目は受信した側のポインタだけが確保されます。
type MaterialRecord struct {
	Material
	*LibroFields
	*TesisFields
}

// Kind は保持している種別固有項目から種別を返します。判別できない場合は空文字です。
func (r MaterialRecord) Kind() MaterialKind {
	switch {
	case r.LibroFields != nil && r.TesisFields == nil:
		return MaterialLibro
	case r.TesisFields != nil && r.LibroFields == nil:
		return MaterialTesis
	default:
		return ""
	}
}

// Validate は種別固有項目が高々1種類であることを確認します。
func (r MaterialRecord) Validate() error {
	if r.LibroFields != nil && r.TesisFields != nil {
		return ErrAmbiguousMaterial
	}
	return nil
}

// MaterialDraft は新規登録する資料です。LibroDraft と TesisDraft のみが実装します。
type MaterialDraft interface {
	Kind() MaterialKind
	Base() Material
	isMaterialDraft()
}

// LibroDraft は POST /api/materiales/libro の本文です。
type LibroDraft struct {
	Material
	LibroFields
}

// Kind は MaterialLibro を返します。
func (*LibroDraft) Kind() MaterialKind { return MaterialLibro }

// Base は共通項目を返します。
func (d *LibroDraft) Base() Material { return d.Material }

func (*LibroDraft) isMaterialDraft() {}

// TesisDraft は POST /api/materiales/tesis の本文です。
type TesisDraft struct {
	Material
	TesisFields
}

// Kind は MaterialTesis を返します。
func (*TesisDraft) Kind() MaterialKind { return MaterialTesis }

// Base は共通項目を返します。
func (d *TesisDraft) Base() Material { return d.Material }

func (*TesisDraft) isMaterialDraft() {}
