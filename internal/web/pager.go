package web

import (
	"net/url"
	"strconv"

	"github.com/yourusername/biblioteca-web/internal/listing"
)

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

// pager はページ送りのリンクです。検索語などのクエリを引き継ぎます。
type pager struct {
	Number     int
	TotalPages int
	PrevURL    string
	NextURL    string
	Links      []pageLink
}

func newPager[T any](path string, query url.Values, p listing.Page[T]) pager {
	link := func(n int) string {
		q := url.Values{}
		for k, v := range query {
			if v = nonEmpty(v); len(v) > 0 {
				q[k] = v
			}
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}

	pg := pager{Number: p.Number, TotalPages: p.TotalPages}
	if p.HasPrev() {
		pg.PrevURL = link(p.Prev())
	}
	if p.HasNext() {
		pg.NextURL = link(p.Next())
	}
	for _, n := range p.Numbers() {
		pg.Links = append(pg.Links, pageLink{Number: n, URL: link(n), Current: n == p.Number})
	}
	return pg
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// pageParam は page クエリを読み取ります。不正な値は 1 ページ目として扱います。
func pageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
