package library

import (
	"strings"

	"github.com/yourusername/biblioteca-web/internal/listing"
	"github.com/yourusername/biblioteca-web/internal/model"
)

// MaterialNoEncontrado は資料が見つからない貸出に表示するタイトルです。
const MaterialNoEncontrado = "Material no encontrado"

// TodosLosIdiomas は言語で絞り込まないことを表すファセット値です。
const TodosLosIdiomas = "todos"

// LoanView は資料タイトルを解決済みの貸出です。
type LoanView struct {
	model.Prestamo
	MaterialTitulo string
	// Found は資料一覧に該当する資料があったかどうかです。
	Found bool
}

// LoanViews は貸出ごとに資料タイトルを解決します。
func LoanViews(prestamos []model.Prestamo, materiales []model.MaterialRecord) []LoanView {
	titles := make(map[string]string, len(materiales))
	for _, m := range materiales {
		titles[m.ID] = m.Titulo
	}

	views := make([]LoanView, 0, len(prestamos))
	for _, p := range prestamos {
		title, ok := titles[p.MaterialID]
		if !ok {
			title = MaterialNoEncontrado
		}
		views = append(views, LoanView{Prestamo: p, MaterialTitulo: title, Found: ok})
	}
	return views
}

// FilterLoanViews は資料タイトルで絞り込みます。資料が見つからない貸出は検索語があると除外されます。
func FilterLoanViews(views []LoanView, term string) []LoanView {
	if strings.TrimSpace(term) == "" {
		return views
	}
	found := make([]LoanView, 0, len(views))
	for _, v := range views {
		if v.Found {
			found = append(found, v)
		}
	}
	return listing.Filter(found, term, func(v LoanView) []string { return []string{v.MaterialTitulo} })
}

// FilterCatalogo はタイトル・著者の検索と言語の完全一致で資料を絞り込みます。
func FilterCatalogo(materiales []model.MaterialRecord, term, idioma string) []model.MaterialRecord {
	filtered := listing.Filter(materiales, term, func(m model.MaterialRecord) []string {
		return []string{m.Titulo, m.Autor}
	})
	if idioma == "" || idioma == TodosLosIdiomas {
		return filtered
	}
	byIdioma := make([]model.MaterialRecord, 0, len(filtered))
	for _, m := range filtered {
		if m.Idioma == idioma {
			byIdioma = append(byIdioma, m)
		}
	}
	return byIdioma
}

// Idiomas は資料に現れる言語を初出順で返します。
func Idiomas(materiales []model.MaterialRecord) []string {
	seen := make(map[string]bool)
	idiomas := []string{}
	for _, m := range materiales {
		if !seen[m.Idioma] {
			seen[m.Idioma] = true
			idiomas = append(idiomas, m.Idioma)
		}
	}
	return idiomas
}
