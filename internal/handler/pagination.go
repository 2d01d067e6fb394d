package handler

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/yamdb/internal/repository"
)

// Pagination holds the page size limits of list endpoints.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// page reads ?page and ?page_size. Invalid values fall back to the defaults;
// page_size is capped at MaxSize.
func (p Pagination) page(c *gin.Context) repository.Page {
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil || number < 1 {
		number = 1
	}

	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = p.DefaultSize
	}
	if size > p.MaxSize {
		size = p.MaxSize
	}

	return repository.Page{Number: number, Size: size}
}

func paginate[T any](c *gin.Context, page repository.Page, total int64, results []T) PageResponse[T] {
	resp := PageResponse[T]{Count: total, Results: results}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if int64(page.Number*page.Size) < total {
		next := pageURL(c, page.Number+1)
		resp.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(c, page.Number-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL returns the absolute URL of the current request with page set.
func pageURL(c *gin.Context, number int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	q := c.Request.URL.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
