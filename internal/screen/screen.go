// Package screen holds the view state behind one resource table: the
// current page, the rows last fetched, and a transient notice.
//
// Every mutation is followed by a re-fetch of the current page; rows are
// never patched locally. Fetches are tagged with a sequence number so a
// result that arrives after a newer fetch started is dropped.
package screen

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/felixgeelhaar/skilladmin/internal/api"
)

// DefaultSize is the initial page size.
const DefaultSize = 10

// SizeOptions are the page sizes CycleSize steps through.
var SizeOptions = []int{10, 20, 50}

// NoticeKind classifies a Notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a one-shot message shown above the table.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Noun names the resource in notices, e.g. {"user", "users"}.
type Noun struct {
	Singular string
	Plural   string
}

func (n Noun) title() string {
	r, size := utf8.DecodeRuneInString(n.Singular)
	if r == utf8.RuneError {
		return n.Singular
	}
	return string(unicode.ToUpper(r)) + n.Singular[size:]
}

// Result is the outcome of one list fetch.
type Result[T any] struct {
	Seq  uint64
	Page *api.Page[T]
	Err  error
}

// View is a consistent snapshot of a Screen.
type View[T any] struct {
	Items   []T
	Total   int
	Page    int
	Size    int
	Pages   int
	Loading bool
	Notice  *Notice
}

// Screen drives one api.Resource. It is safe for concurrent use.
type Screen[T any, In any] struct {
	res  api.Resource[T, In]
	noun Noun

	mu      sync.Mutex
	page    int
	size    int
	items   []T
	total   int
	loading bool
	notice  *Notice
	seq     uint64
}

// New creates a screen at page 0 with DefaultSize rows per page.
func New[T any, In any](res api.Resource[T, In], noun Noun) *Screen[T, In] {
	return &Screen[T, In]{
		res:   res,
		noun:  noun,
		size:  DefaultSize,
		items: []T{},
	}
}

// Noun returns the resource name used in notices.
func (s *Screen[T, In]) Noun() Noun {
	return s.noun
}

// Refresh fetches the current page and applies the result.
func (s *Screen[T, In]) Refresh(ctx context.Context) error {
	r := s.Fetch(ctx)
	s.Apply(r)
	return r.Err
}

// Fetch lists the current page without touching Items or Total. Call Apply
// with the result; Fetch may run on another goroutine.
func (s *Screen[T, In]) Fetch(ctx context.Context) Result[T] {
	s.mu.Lock()
	s.seq++
	seq, page, size := s.seq, s.page, s.size
	s.loading = true
	s.mu.Unlock()

	p, err := s.res.List(ctx, page, size)
	return Result[T]{Seq: seq, Page: p, Err: err}
}

// Apply installs a fetch result. It reports false, changing nothing, when
// a newer fetch has started since r was requested.
func (s *Screen[T, In]) Apply(r Result[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Seq != s.seq {
		return false
	}
	s.loading = false
	if r.Err != nil {
		s.notice = &Notice{Kind: NoticeError, Message: api.Message(r.Err, "Failed to fetch "+s.noun.Plural+".")}
		return true
	}
	if r.Page != nil {
		s.items = r.Page.Items
		if s.items == nil {
			s.items = []T{}
		}
		s.total = r.Page.Total
	}
	return true
}

// Create adds a record, then re-fetches the current page.
func (s *Screen[T, In]) Create(ctx context.Context, in In) error {
	_, err := s.res.Create(ctx, in)
	return s.afterMutation(ctx, err, "Failed to save "+s.noun.Singular+".", s.noun.title()+" added successfully!")
}

// Update edits a record, then re-fetches the current page.
func (s *Screen[T, In]) Update(ctx context.Context, id string, in In) error {
	_, err := s.res.Update(ctx, id, in)
	return s.afterMutation(ctx, err, "Failed to save "+s.noun.Singular+".", s.noun.title()+" updated successfully!")
}

// Delete removes a record, then re-fetches the current page. The server's
// message is preferred for the success notice.
func (s *Screen[T, In]) Delete(ctx context.Context, id string) error {
	ack, err := s.res.Delete(ctx, id)
	success := s.noun.title() + " deleted successfully!"
	if err == nil && ack != nil && strings.TrimSpace(ack.Message) != "" {
		success = ack.Message
	}
	if err := s.afterMutation(ctx, err, "Failed to delete "+s.noun.Singular+".", success); err != nil {
		return err
	}

	// Deleting the last row of the last page leaves the page past the end;
	// step back to the new last page.
	s.mu.Lock()
	back := s.items != nil && len(s.items) == 0 && s.page > 0
	if back {
		s.page = max(0, (s.total+s.size-1)/s.size-1)
	}
	s.mu.Unlock()
	if back {
		s.refetch(ctx)
	}
	return nil
}

func (s *Screen[T, In]) afterMutation(ctx context.Context, err error, fallback, success string) error {
	if err != nil {
		s.SetNotice(NoticeError, api.Message(err, fallback))
		return err
	}
	s.SetNotice(NoticeSuccess, success)
	s.refetch(ctx)
	return nil
}

// refetch reloads the current page after a successful mutation. A failed
// reload keeps the mutation's notice and the prior rows.
func (s *Screen[T, In]) refetch(ctx context.Context) {
	r := s.Fetch(ctx)
	if r.Err != nil {
		s.mu.Lock()
		if r.Seq == s.seq {
			s.loading = false
		}
		s.mu.Unlock()
		return
	}
	s.Apply(r)
}

// SetPage moves to a 0-based page. Negative pages are clamped to 0.
func (s *Screen[T, In]) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
}

// SetSize changes the page size and returns to page 0. Sizes outside
// 1..api.MaxPageSize are ignored and reported as false.
func (s *Screen[T, In]) SetSize(size int) bool {
	if size < 1 || size > api.MaxPageSize {
		return false
	}
	s.mu.Lock()
	s.size = size
	s.page = 0
	s.mu.Unlock()
	return true
}

// CycleSize steps to the next entry of SizeOptions and returns the new size.
func (s *Screen[T, In]) CycleSize() int {
	s.mu.Lock()
	cur := s.size
	s.mu.Unlock()

	next := SizeOptions[0]
	for i, opt := range SizeOptions {
		if opt == cur {
			next = SizeOptions[(i+1)%len(SizeOptions)]
			break
		}
	}
	s.SetSize(next)
	return next
}

// NextPage advances when another page exists.
func (s *Screen[T, In]) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if (s.page+1)*s.size >= s.total {
		return false
	}
	s.page++
	return true
}

// PrevPage steps back when not on the first page.
func (s *Screen[T, In]) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == 0 {
		return false
	}
	s.page--
	return true
}

// SetNotice replaces the current notice.
func (s *Screen[T, In]) SetNotice(kind NoticeKind, msg string) {
	s.mu.Lock()
	s.notice = &Notice{Kind: kind, Message: msg}
	s.mu.Unlock()
}

// DismissNotice clears the notice.
func (s *Screen[T, In]) DismissNotice() {
	s.mu.Lock()
	s.notice = nil
	s.mu.Unlock()
}

// View returns a snapshot of the screen.
func (s *Screen[T, In]) View() View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View[T]{
		Items:   append([]T(nil), s.items...),
		Total:   s.total,
		Page:    s.page,
		Size:    s.size,
		Loading: s.loading,
	}
	if v.Items == nil {
		v.Items = []T{}
	}
	if s.size > 0 && s.total > 0 {
		v.Pages = (s.total + s.size - 1) / s.size
	}
	if s.notice != nil {
		n := *s.notice
		v.Notice = &n
	}
	return v
}
