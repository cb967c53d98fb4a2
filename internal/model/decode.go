package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

var (
	libroKeys   = jsonKeys(LibroFields{})
	tesisKeys   = jsonKeys(TesisFields{})
	alumnoKeys  = jsonKeys(AlumnoFields{})
	docenteKeys = jsonKeys(DocenteFields{})
	externoKeys = jsonKeys(ExternoFields{})
)

// UnmarshalJSON は null 以外の値を持つ種別固有項目だけを確保します。
// 平坦な DTO が他の種別の項目を null で送ってきても種別は1つに定まります。
func (r *MaterialRecord) UnmarshalJSON(data []byte) error {
	var flat struct {
		Material
		LibroFields
		TesisFields
	}
	present, err := decodeFlat(data, &flat)
	if err != nil {
		return err
	}

	*r = MaterialRecord{Material: flat.Material}
	if present(libroKeys) {
		libro := flat.LibroFields
		r.LibroFields = &libro
	}
	if present(tesisKeys) {
		tesis := flat.TesisFields
		r.TesisFields = &tesis
	}
	return nil
}

// UnmarshalJSON は null 以外の値を持つ種別固有項目だけを確保します。
func (r *UsuarioRecord) UnmarshalJSON(data []byte) error {
	var flat struct {
		Usuario
		AlumnoFields
		DocenteFields
		ExternoFields
	}
	present, err := decodeFlat(data, &flat)
	if err != nil {
		return err
	}

	*r = UsuarioRecord{Usuario: flat.Usuario}
	if present(alumnoKeys) {
		alumno := flat.AlumnoFields
		r.AlumnoFields = &alumno
	}
	if present(docenteKeys) {
		docente := flat.DocenteFields
		r.DocenteFields = &docente
	}
	if present(externoKeys) {
		externo := flat.ExternoFields
		r.ExternoFields = &externo
	}
	return nil
}

// decodeFlat は data を out にデコードし、キー群のどれかが null 以外の値で
// 送られてきたかを判定する関数を返します。キーの照合は encoding/json と同じく大文字小文字を区別しません。
func decodeFlat(data []byte, out any) (func(keys []string) bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}

	present := func(keys []string) bool {
		for name, value := range raw {
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				continue
			}
			for _, key := range keys {
				if strings.EqualFold(name, key) {
					return true
				}
			}
		}
		return false
	}
	return present, nil
}

// jsonKeys は構造体の json タグ名を返します。
func jsonKeys(v any) []string {
	t := reflect.TypeOf(v)
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}
