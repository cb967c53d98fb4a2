package model

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// エラーのキーをフォームの name 属性に揃える
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("form"), ",")[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// fieldMessages はバリデーションタグごとの表示メッセージです。
var fieldMessages = map[string]string{
	"required": "Este campo es obligatorio.",
	"number":   "Debe ser un número entero.",
	"email":    "Ingrese un correo electrónico válido.",
	"datetime": "Ingrese una fecha válida (AAAA-MM-DD).",
	"min":      "Debe tener al menos %s caracteres.",
}

// FieldErrors はフォーム項目名からエラーメッセージへの対応です。
type FieldErrors map[string]string

// Names は項目名を昇順で返します。
func (fe FieldErrors) Names() []string {
	names := make([]string, 0, len(fe))
	for k := range fe {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ValidationError は入力検証に失敗した項目を列挙するエラーです。
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Names(), ", ")
}

// AsValidationError は err が ValidationError であればそれを返します。
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ValidateStruct は構造体を検証し、フォーム項目名ごとのメッセージを返します。
func ValidateStruct(s any) FieldErrors {
	result := FieldErrors{}

	err := validate.Struct(s)
	if err == nil {
		return result
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return result
	}
	for _, e := range validationErrs {
		result[e.Field()] = parseMessage(e)
	}
	return result
}

func parseMessage(e validator.FieldError) string {
	msg, ok := fieldMessages[e.Tag()]
	if !ok {
		return "Valor no válido."
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, e.Param())
	}
	return msg
}
