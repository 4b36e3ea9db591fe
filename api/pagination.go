package api

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

const DefaultPerPage = 10

// PerPageChoices are the accepted per_page values
var PerPageChoices = []any{5, 10, 25, 50, 100}

// PageRequest is the list query string
type PageRequest struct {
	Page    int `query:"page" json:"page"`
	PerPage int `query:"per_page" json:"per_page"`
}

func (r PageRequest) Validate() error {
	// Min and In skip zero values, Required catches them
	pageMsg := "page must be a positive integer"
	perPageMsg := "per_page must be one of 5, 10, 25, 50, 100"
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Required.Error(pageMsg), validation.Min(1).Error(pageMsg)),
		validation.Field(&r.PerPage, validation.Required.Error(perPageMsg), validation.In(PerPageChoices...).Error(perPageMsg)),
	)
}

// ParsePageRequest reads page and per_page, applying defaults
func ParsePageRequest(c *fiber.Ctx) (PageRequest, error) {
	req := PageRequest{Page: 1, PerPage: DefaultPerPage}

	fields := validation.Errors{}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["page"] = fmt.Errorf("page must be a positive integer")
		}
		req.Page = n
	}
	if raw := c.Query("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["per_page"] = fmt.Errorf("per_page must be one of 5, 10, 25, 50, 100")
		}
		req.PerPage = n
	}
	if len(fields) > 0 {
		return req, fields
	}

	return req, req.Validate()
}

// PageLinks are the navigation links of a page
type PageLinks struct {
	Self  string `json:"self"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// Pagination is the list response envelope
type Pagination[T any] struct {
	Links        PageLinks `json:"links"`
	HasPrev      bool      `json:"has_prev"`
	HasNext      bool      `json:"has_next"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	ItemsPerPage int       `json:"items_per_page"`
	TotalItems   int       `json:"total_items"`
	Items        []T       `json:"items"`
}

// NewPagination builds the envelope for one page of total results under base
func NewPagination[T any](req PageRequest, total int, base string, items []T) Pagination[T] {
	pages := (total + req.PerPage - 1) / req.PerPage
	if pages < 1 {
		pages = 1
	}

	link := func(page int) string {
		return fmt.Sprintf("%s?page=%d&per_page=%d", base, page, req.PerPage)
	}

	p := Pagination[T]{
		HasPrev:      req.Page > 1,
		HasNext:      req.Page < pages,
		Page:         req.Page,
		TotalPages:   pages,
		ItemsPerPage: req.PerPage,
		TotalItems:   total,
		Items:        items,
		Links: PageLinks{
			Self:  link(req.Page),
			First: link(1),
			Last:  link(pages),
		},
	}
	if p.HasPrev {
		p.Links.Prev = link(req.Page - 1)
	}
	if p.HasNext {
		p.Links.Next = link(req.Page + 1)
	}
	return p
}

// linkHeader renders the RFC 8288 Link header value
func (p Pagination[T]) linkHeader() string {
	rels := []struct{ rel, url string }{
		{"self", p.Links.Self},
		{"first", p.Links.First},
		{"prev", p.Links.Prev},
		{"next", p.Links.Next},
		{"last", p.Links.Last},
	}
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		if r.url != "" {
			out = append(out, fmt.Sprintf(`<%s>; rel="%s"`, r.url, r.rel))
		}
	}
	return strings.Join(out, ", ")
}
