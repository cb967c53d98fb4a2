package web

import (
	"net/url"
	"testing"

	"github.com/yourusername/biblioteca-web/internal/listing"
)

func TestNewPagerCarriesQuery(t *testing.T) {
	items := make([]int, 25)
	p := listing.Paginate(items, 2, 10)
	pg := newPager("/user/catalogo", url.Values{"q": {"sol"}, "idioma": {""}}, p)

	if pg.PrevURL != "/user/catalogo?page=1&q=sol" || pg.NextURL != "/user/catalogo?page=3&q=sol" {
		t.Fatalf("unexpected prev/next: %q %q", pg.PrevURL, pg.NextURL)
	}
	if len(pg.Links) != 3 || !pg.Links[1].Current || pg.Links[0].Current {
		t.Fatalf("unexpected links: %+v", pg.Links)
	}

	last := newPager("/x", nil, listing.Paginate(items, 3, 10))
	if last.NextURL != "" || last.PrevURL != "/x?page=2" {
		t.Fatalf("unexpected last page urls: %+v", last)
	}
}

func TestPageParam(t *testing.T) {
	for raw, want := range map[string]int{"": 1, "abc": 1, "-2": 1, "0": 1, "3": 3} {
		if got := pageParam(raw); got != want {
			t.Errorf("pageParam(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestListURL(t *testing.T) {
	if got := listURL("/admin/usuarios", "", 1); got != "/admin/usuarios" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := listURL("/admin/usuarios", "ana maría", 3); got != "/admin/usuarios?page=3&q=ana+mar%C3%ADa" {
		t.Fatalf("unexpected url: %s", got)
	}
}
