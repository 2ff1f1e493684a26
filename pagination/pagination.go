// Package pagination implements page-number pagination for list endpoints.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"

	"payment-tracker-api/apperr"
)

const (
	PageParam     = "page"
	PageSizeParam = "page_size"
	lastPage      = "last"
)

// Paginator holds the page size bounds.
type Paginator struct {
	DefaultSize int
	MaxSize     int
}

// Request is an unresolved page request.
type Request struct {
	page int
	last bool
	Size int
}

// Window is a request resolved against a result count.
type Window struct {
	Number     int
	Size       int
	TotalPages int
}

// Offset is the number of rows before this page.
func (w Window) Offset() int { return (w.Number - 1) * w.Size }

// Page is the list response envelope.
type Page[T any] struct {
	Count       int64   `json:"count"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
	PageSize    int     `json:"page_size"`
	Results     []T     `json:"results"`
}

// Parse reads page and page_size. A bad page_size falls back to the
// default and an oversized one is clamped. A bad page is reported by Resolve.
func (p Paginator) Parse(q url.Values) Request {
	req := Request{Size: p.DefaultSize, page: 1}

	if raw := q.Get(PageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.Size = min(n, p.MaxSize)
		}
	}

	switch raw := q.Get(PageParam); raw {
	case "":
	case lastPage:
		req.last = true
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			req.page = -1
		} else {
			req.page = n
		}
	}
	return req
}

// Resolve checks the requested page against count. Empty results still
// have one page.
func (r Request) Resolve(count int64) (Window, error) {
	size := r.Size
	if size < 1 {
		size = 1
	}
	total := int((count + int64(size) - 1) / int64(size))
	if total < 1 {
		total = 1
	}

	number := r.page
	if r.last {
		number = total
	}
	if number < 1 || number > total {
		return Window{}, apperr.ErrInvalidPage
	}
	return Window{Number: number, Size: size, TotalPages: total}, nil
}

// Build assembles the envelope. base is the absolute request URL; next and
// previous links keep its other query parameters.
func Build[T any](base *url.URL, w Window, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{
		Count:       count,
		CurrentPage: w.Number,
		TotalPages:  w.TotalPages,
		HasNext:     w.Number < w.TotalPages,
		HasPrevious: w.Number > 1,
		PageSize:    w.Size,
		Results:     results,
	}
	if page.HasNext {
		page.Next = link(base, w.Number+1)
	}
	if page.HasPrevious {
		page.Previous = link(base, w.Number-1)
	}
	return page
}

func link(base *url.URL, number int) *string {
	u := *base
	q := u.Query()
	if number == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// AbsoluteURL rebuilds the URL a client used to reach r.
func AbsoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		u.Scheme = proto
	}
	return &u
}
