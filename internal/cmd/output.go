package cmd

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/skilladmin/internal/screen"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
)

// outcome is the result of a mutation: the notice the dashboard would show.
type outcome struct {
	Message string `json:"message" yaml:"message"`
}

func (o outcome) String() string {
	return o.Message
}

// listing is one page of a resource. Page is 1-based for people.
type listing[T any] struct {
	Items []T `json:"items" yaml:"items"`
	Total int `json:"total" yaml:"total"`
	Page  int `json:"page" yaml:"page"`
	Pages int `json:"pages" yaml:"pages"`
	Size  int `json:"size" yaml:"size"`

	noun    screen.Noun
	headers []string
	row     func(T) []string
}

func newListing[T any](v screen.View[T], noun screen.Noun, headers []string, row func(T) []string) listing[T] {
	return listing[T]{
		Items:   v.Items,
		Total:   v.Total,
		Page:    v.Page + 1,
		Pages:   v.Pages,
		Size:    v.Size,
		noun:    noun,
		headers: headers,
		row:     row,
	}
}

func (l listing[T]) Table() *ux.Table {
	t := ux.NewTable(l.headers...)
	for _, item := range l.Items {
		t.AddRow(l.row(item)...)
	}
	t.Empty = fmt.Sprintf("No %s found.", l.noun.Plural)
	t.Footer = fmt.Sprintf("Page %d of %d · %d %s", l.Page, max(l.Pages, 1), l.Total, l.noun.Plural)
	return t
}

// fields is an ordered key/value report, e.g. for `status`.
type fields struct {
	title string
	rows  [][2]string
}

func (f *fields) add(key, value string) {
	f.rows = append(f.rows, [2]string{key, value})
}

func (f *fields) Table() *ux.Table {
	t := ux.NewTable("FIELD", "VALUE")
	t.Title = f.title
	for _, r := range f.rows {
		t.AddRow(r[0], r[1])
	}
	return t
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
