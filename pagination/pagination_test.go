package pagination

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"

	"payment-tracker-api/apperr"
)

var paginator = Paginator{DefaultSize: 10, MaxSize: 100}

func TestParse(t *testing.T) {
	cases := []struct {
		query    string
		wantSize int
		wantPage int
	}{
		{"", 10, 1},
		{"page_size=25", 25, 1},
		{"page_size=500", 100, 1},
		{"page_size=0", 10, 1},
		{"page_size=abc", 10, 1},
		{"page=3", 10, 3},
		{"page=zero", 10, -1},
		{"page=-2", 10, -1},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tc.query)
			req := paginator.Parse(q)
			if req.Size != tc.wantSize {
				t.Errorf("size = %d, want %d", req.Size, tc.wantSize)
			}
			if req.page != tc.wantPage {
				t.Errorf("page = %d, want %d", req.page, tc.wantPage)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		count     int64
		wantPage  int
		wantTotal int
		wantErr   bool
	}{
		{"empty result has one page", "", 0, 1, 1, false},
		{"exact fit", "", 20, 1, 2, false},
		{"remainder", "page=3", 21, 3, 3, false},
		{"last", "page=last", 21, 3, 3, false},
		{"beyond last", "page=4", 21, 0, 0, true},
		{"garbage page", "page=x", 21, 0, 0, true},
		{"page two of empty", "page=2", 0, 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tc.query)
			w, err := paginator.Parse(q).Resolve(tc.count)
			if tc.wantErr {
				if !errors.Is(err, apperr.ErrNotFound) {
					t.Fatalf("expected not found, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.Number != tc.wantPage || w.TotalPages != tc.wantTotal {
				t.Errorf("got page %d of %d, want %d of %d", w.Number, w.TotalPages, tc.wantPage, tc.wantTotal)
			}
		})
	}
}

func TestBuildLinks(t *testing.T) {
	base, _ := url.Parse("http://api.test/api/payments/?page=2&search=acme")
	w := Window{Number: 2, Size: 10, TotalPages: 3}

	page := Build(base, w, 25, []int{11, 12})

	if !page.HasNext || !page.HasPrevious {
		t.Fatalf("middle page should have both links: %+v", page)
	}
	if got, want := *page.Next, "http://api.test/api/payments/?page=3&search=acme"; got != want {
		t.Errorf("next = %s, want %s", got, want)
	}
	if got, want := *page.Previous, "http://api.test/api/payments/?search=acme"; got != want {
		t.Errorf("previous = %s, want %s", got, want)
	}
	if w.Offset() != 10 {
		t.Errorf("offset = %d, want 10", w.Offset())
	}
}

func TestBuildFirstPageEmpty(t *testing.T) {
	base, _ := url.Parse("http://api.test/api/logs/")
	page := Build[string](base, Window{Number: 1, Size: 10, TotalPages: 1}, 0, nil)

	if page.Next != nil || page.Previous != nil {
		t.Errorf("single page should have no links: %+v", page)
	}
	if page.Results == nil || len(page.Results) != 0 {
		t.Errorf("results should be an empty list, got %#v", page.Results)
	}
}

func TestAbsoluteURL(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/users/?page=2", nil)
	r.Host = "payments.example.com"
	r.Header.Set("X-Forwarded-Proto", "https")

	if got, want := AbsoluteURL(r).String(), "https://payments.example.com/api/users/?page=2"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
