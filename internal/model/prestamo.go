package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout は API とフォームで使う日付の形式です。
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Date は時刻を持たない暦日です。
type Date struct {
	time.Time
}

// NewDate は t の暦日を UTC の 0 時として保持します。
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate は "2006-01-02" 形式、またはタイムスタンプ形式の文字列を暦日に変換します。
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// String は "2006-01-02" 形式で返します。ゼロ値は空文字です。
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before は d が other より前の日付かどうかを返します。
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Estado は貸出の状態です。
type Estado string

const (
	EstadoActivo   Estado = "ACTIVO"
	EstadoDevuelto Estado = "DEVUELTO"
	EstadoVencido  Estado = "VENCIDO"
)

// Valid は既知の状態かどうかを返します。
func (e Estado) Valid() bool {
	switch e {
	case EstadoActivo, EstadoDevuelto, EstadoVencido:
		return true
	default:
		return false
	}
}

// Label は画面表示用の名称を返します。
func (e Estado) Label() string {
	switch e {
	case EstadoActivo:
		return "Activo"
	case EstadoDevuelto:
		return "Devuelto"
	case EstadoVencido:
		return "Vencido"
	default:
		return string(e)
	}
}

// Badge は状態表示に使う CSS クラスを返します。
func (e Estado) Badge() string {
	switch e {
	case EstadoActivo:
		return "badge-warning"
	case EstadoDevuelto:
		return "badge-success"
	case EstadoVencido:
		return "badge-danger"
	default:
		return "badge-muted"
	}
}

// UnmarshalJSON は大文字小文字を区別せずに状態を読み取ります。
func (e *Estado) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = Estado(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

var (
	// ErrNotReturnable は ACTIVO 以外の貸出を返却しようとした場合のエラーです。
	ErrNotReturnable = errors.New("prestamo is not returnable")
	// ErrInconsistentReturn は返却日と状態が食い違っている場合のエラーです。
	ErrInconsistentReturn = errors.New("fechaDevolucionReal must be set exactly when estado is DEVUELTO")
	// ErrReturnBeforeLoan は返却予定日が貸出日より前の場合のエラーです。
	ErrReturnBeforeLoan = errors.New("fechaDevolucionEsperada is before fechaPrestamo")
)

// Prestamo は資料の貸出です。新規登録時は IDPrestamo を空にします。
type Prestamo struct {
	IDPrestamo              string `json:"idPrestamo,omitempty"`
	MaterialID              string `json:"materialId"`
	UsuarioID               string `json:"usuarioId"`
	FechaPrestamo           Date   `json:"fechaPrestamo"`
	FechaDevolucionEsperada Date   `json:"fechaDevolucionEsperada"`
	FechaDevolucionReal     *Date  `json:"fechaDevolucionReal,omitempty"`
	Estado                  Estado `json:"estado"`
}

// SearchFields は一覧検索の対象となる項目を返します。
func (p Prestamo) SearchFields() []string {
	return []string{p.IDPrestamo, p.MaterialID, p.UsuarioID}
}

// Validate は返却日と状態の整合性を確認します。
func (p Prestamo) Validate() error {
	if (p.FechaDevolucionReal != nil) != (p.Estado == EstadoDevuelto) {
		return ErrInconsistentReturn
	}
	if !p.FechaPrestamo.IsZero() && !p.FechaDevolucionEsperada.IsZero() &&
		p.FechaDevolucionEsperada.Before(p.FechaPrestamo) {
		return ErrReturnBeforeLoan
	}
	return nil
}

// CanReturn は返却操作が可能かどうかを返します。返却できるのは ACTIVO の貸出のみです。
func (p Prestamo) CanReturn() bool {
	return p.Estado == EstadoActivo
}

// Returned は today に返却された状態の貸出を返します。元の値は変更しません。
func (p Prestamo) Returned(today Date) (Prestamo, error) {
	if !p.CanReturn() {
		return p, ErrNotReturnable
	}
	p.Estado = EstadoDevuelto
	p.FechaDevolucionReal = &today
	return p, nil
}
