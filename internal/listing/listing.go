// Package listing は一覧画面の検索・ページ分割を提供します。
package listing

import (
	"strings"

	"github.com/yourusername/biblioteca-web/internal/model"
)

// Filter は fields が返すいずれかの項目に term を含む要素だけを残します。
// 大文字小文字は区別せず、空白だけの term は全件を返します。元の順序を保ちます。
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return items
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), needle) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}

// Page は1ページ分の要素とページ情報です。Number は 1 始まりです。
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

// HasPrev は前のページがあるかどうかを返します。
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext は次のページがあるかどうかを返します。
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Prev は前のページ番号です。
func (p Page[T]) Prev() int { return p.Number - 1 }

// Next は次のページ番号です。
func (p Page[T]) Next() int { return p.Number + 1 }

// Numbers はページ番号の一覧を返します。
func (p Page[T]) Numbers() []int {
	numbers := make([]int, p.TotalPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

// Paginate は page 番目のページを切り出します。page は [1, TotalPages] に丸めます。
// 要素が0件でも TotalPages は 1 です。
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 10
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
	}
}

// ForUsuario は usuarioID の貸出だけを返します。
func ForUsuario(loans []model.Prestamo, usuarioID string) []model.Prestamo {
	owned := make([]model.Prestamo, 0, len(loans))
	for _, loan := range loans {
		if loan.UsuarioID == usuarioID {
			owned = append(owned, loan)
		}
	}
	return owned
}

// Recent は先頭から最大 n 件を返します。
func Recent[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
