package query

import (
	"errors"
	"fmt"
)

// MaxPageSize bounds PageRequest.Size.
const MaxPageSize = 2000

// ErrInvalidPageRequest indicates a negative page index or a size outside 1..MaxPageSize.
var ErrInvalidPageRequest = errors.New("invalid page request")

// PageRequest selects one zero-based page of a sorted result.
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// Of creates a validated PageRequest.
func Of(page, size int, sort Sort) (PageRequest, error) {
	req := PageRequest{Page: page, Size: size, Sort: sort}
	if err := req.Validate(); err != nil {
		return PageRequest{}, err
	}
	return req, nil
}

// Validate checks page and size bounds.
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("%w: page must be >= 0, got %d", ErrInvalidPageRequest, p.Page)
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d, got %d", ErrInvalidPageRequest, MaxPageSize, p.Size)
	}
	return nil
}

// Offset is the number of rows preceding the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Next returns the request for the following page.
func (p PageRequest) Next() PageRequest {
	p.Page++
	return p
}

// Previous returns the request for the preceding page, or p itself on the first page.
func (p PageRequest) Previous() PageRequest {
	if p.Page > 0 {
		p.Page--
	}
	return p
}

// Page is one page of content plus totals from a separate count.
type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	HasNext          bool  `json:"hasNext"`
	HasPrevious      bool  `json:"hasPrevious"`
	NumberOfElements int   `json:"numberOfElements"`
	Empty            bool  `json:"empty"`
}

// NewPage assembles a Page. TotalPages is ceil(total/size).
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:          content,
		Number:           req.Page,
		Size:             req.Size,
		TotalElements:    total,
		TotalPages:       totalPages,
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		HasNext:          req.Page+1 < totalPages,
		HasPrevious:      req.Page > 0,
		NumberOfElements: len(content),
		Empty:            len(content) == 0,
	}
}

// Slice is one page of content with a has-next flag and no totals.
type Slice[T any] struct {
	Content          []T  `json:"content"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	HasNext          bool `json:"hasNext"`
	HasPrevious      bool `json:"hasPrevious"`
	NumberOfElements int  `json:"numberOfElements"`
	Empty            bool `json:"empty"`
}

// NewSlice assembles a Slice from up to req.Size+1 fetched rows.
// The extra row only signals that a next page exists.
func NewSlice[T any](rows []T, req PageRequest) Slice[T] {
	hasNext := len(rows) > req.Size
	content := rows
	if hasNext {
		content = rows[:req.Size]
	}
	if content == nil {
		content = []T{}
	}
	return Slice[T]{
		Content:          content,
		Number:           req.Page,
		Size:             req.Size,
		First:            req.Page == 0,
		Last:             !hasNext,
		HasNext:          hasNext,
		HasPrevious:      req.Page > 0,
		NumberOfElements: len(content),
		Empty:            len(content) == 0,
	}
}

// MapPage converts page content with fn, keeping the metadata.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	content := make([]R, 0, len(p.Content))
	for _, v := range p.Content {
		content = append(content, fn(v))
	}
	return Page[R]{
		Content:          content,
		Number:           p.Number,
		Size:             p.Size,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages,
		First:            p.First,
		Last:             p.Last,
		HasNext:          p.HasNext,
		HasPrevious:      p.HasPrevious,
		NumberOfElements: p.NumberOfElements,
		Empty:            p.Empty,
	}
}

// MapSlice converts slice content with fn, keeping the metadata.
func MapSlice[T, R any](s Slice[T], fn func(T) R) Slice[R] {
	content := make([]R, 0, len(s.Content))
	for _, v := range s.Content {
		content = append(content, fn(v))
	}
	return Slice[R]{
		Content:          content,
		Number:           s.Number,
		Size:             s.Size,
		First:            s.First,
		Last:             s.Last,
		HasNext:          s.HasNext,
		HasPrevious:      s.HasPrevious,
		NumberOfElements: s.NumberOfElements,
		Empty:            s.Empty,
	}
}
