package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error は API が 2xx 以外で応答した場合のエラーです。
// Fields にはサーバーが返した JSON オブジェクトをそのまま入れます。
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api responded with status %d: %s", e.StatusCode, e.Message)
}

// IsStatus は err が指定したいずれかのステータスの *Error かどうかを返します。
func IsStatus(err error, statuses ...int) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.StatusCode == s {
			return true
		}
	}
	return false
}

// FieldErrors は err が *Error であればサーバーの項目別エラーを返します。
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return nil
	}
	return apiErr.Fields
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Message: http.StatusText(status)}

	trimmed := bytes.TrimSpace(body)
	var object map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &object); err == nil {
		e.Fields = make(map[string]string, len(object))
		for k, v := range object {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				e.Fields[k] = s
				continue
			}
			e.Fields[k] = string(v)
		}
		for _, key := range []string{"message", "error"} {
			if msg := e.Fields[key]; msg != "" {
				e.Message = msg
				break
			}
		}
		return e
	}

	if text := strings.TrimSpace(string(trimmed)); text != "" && len(text) <= 200 {
		e.Message = text
	}
	return e
}
