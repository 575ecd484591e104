package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/screen"
)

// tab is one resource table of the dashboard.
type tab interface {
	Title() string
	Headers() []string
	Rows() [][]string
	Status() status
	Notice() *screen.Notice
	SetNotice(kind screen.NoticeKind, msg string)
	DismissNotice()
	NextPage() bool
	PrevPage() bool
	CycleSize() int
	// NeedsCatalog reports whether the forms pick from skills and sub-skills.
	NeedsCatalog() bool
	// NeedsUsers reports whether the forms pick a user.
	NeedsUsers() bool
	Fetch(ctx context.Context) tea.Cmd
	NewEditor(lk *lookup) *editor
	EditEditor(row int, lk *lookup) *editor
	DeleteEditor(row int) *editor
}

type status struct {
	Page    int
	Pages   int
	Total   int
	Size    int
	Loading bool
}

// lookup is the reference data a form picks from. Fields the tab does not
// need stay empty.
type lookup struct {
	cat   *api.Catalog
	users []api.User
}

// editor is a form shown over the table. submit runs after the form
// completes, off the update loop.
type editor struct {
	title  string
	form   *huh.Form
	submit func(ctx context.Context) error
}

// fetchedMsg carries a list result back to the update loop, where apply
// installs it unless a newer fetch superseded it.
type fetchedMsg struct {
	apply func() bool
}

// mutatedMsg follows a create, update or delete and its re-fetch.
type mutatedMsg struct {
	err error
}

type resourceTab[T any, In any] struct {
	title   string
	scr     *screen.Screen[T, In]
	headers []string
	row     func(T) []string
	id      func(T) string
	label   func(T) string
	catalog bool
	users   bool

	create func(lk *lookup) (*huh.Form, func() In)
	// edit is nil when the API cannot update the resource.
	edit func(item T, lk *lookup) (*huh.Form, func() In)
}

func (t *resourceTab[T, In]) Title() string      { return t.title }
func (t *resourceTab[T, In]) Headers() []string  { return t.headers }
func (t *resourceTab[T, In]) NeedsCatalog() bool { return t.catalog }
func (t *resourceTab[T, In]) NeedsUsers() bool   { return t.users }
func (t *resourceTab[T, In]) DismissNotice()     { t.scr.DismissNotice() }
func (t *resourceTab[T, In]) NextPage() bool     { return t.scr.NextPage() }
func (t *resourceTab[T, In]) PrevPage() bool     { return t.scr.PrevPage() }
func (t *resourceTab[T, In]) CycleSize() int     { return t.scr.CycleSize() }

func (t *resourceTab[T, In]) Rows() [][]string {
	v := t.scr.View()
	rows := make([][]string, len(v.Items))
	for i, item := range v.Items {
		rows[i] = t.row(item)
	}
	return rows
}

func (t *resourceTab[T, In]) Status() status {
	v := t.scr.View()
	return status{Page: v.Page, Pages: v.Pages, Total: v.Total, Size: v.Size, Loading: v.Loading}
}

func (t *resourceTab[T, In]) Notice() *screen.Notice {
	return t.scr.View().Notice
}

func (t *resourceTab[T, In]) Fetch(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		r := t.scr.Fetch(ctx)
		return fetchedMsg{apply: func() bool { return t.scr.Apply(r) }}
	}
}

func (t *resourceTab[T, In]) item(row int) (T, bool) {
	items := t.scr.View().Items
	if row < 0 || row >= len(items) {
		var zero T
		return zero, false
	}
	return items[row], true
}

func (t *resourceTab[T, In]) NewEditor(lk *lookup) *editor {
	form, input := t.create(lk)
	return &editor{
		title: "New " + t.scr.Noun().Singular,
		form:  form,
		submit: func(ctx context.Context) error {
			return t.scr.Create(ctx, input())
		},
	}
}

func (t *resourceTab[T, In]) EditEditor(row int, lk *lookup) *editor {
	if t.edit == nil {
		t.scr.SetNotice(screen.NoticeInfo, "Editing "+t.scr.Noun().Plural+" is not supported.")
		return nil
	}
	item, ok := t.item(row)
	if !ok {
		return nil
	}
	id := t.id(item)
	form, input := t.edit(item, lk)
	return &editor{
		title: "Edit " + t.scr.Noun().Singular + " " + t.label(item),
		form:  form,
		submit: func(ctx context.Context) error {
			return t.scr.Update(ctx, id, input())
		},
	}
}

func (t *resourceTab[T, In]) DeleteEditor(row int) *editor {
	item, ok := t.item(row)
	if !ok {
		return nil
	}
	id := t.id(item)
	confirmed := false
	return &editor{
		title: "Delete " + t.scr.Noun().Singular,
		form:  confirmForm("Delete "+t.label(item)+"?", &confirmed),
		submit: func(ctx context.Context) error {
			if !confirmed {
				return nil
			}
			return t.scr.Delete(ctx, id)
		},
	}
}

func newTabs(c *api.Client) []tab {
	return []tab{
		&resourceTab[api.User, api.UserInput]{
			title:   "Users",
			scr:     screen.New[api.User, api.UserInput](c.Users(), screen.Noun{Singular: "user", Plural: "users"}),
			headers: screen.UserColumns,
			row:     screen.UserRow,
			id:      func(u api.User) string { return u.ID },
			label:   func(u api.User) string { return u.FullName },
			create:  func(*lookup) (*huh.Form, func() api.UserInput) { return userForm(nil) },
			edit: func(u api.User, _ *lookup) (*huh.Form, func() api.UserInput) {
				return userForm(&u)
			},
		},
		&resourceTab[api.Reel, api.ReelUpload]{
			title:   "Reels",
			scr:     screen.New[api.Reel, api.ReelUpload](c.Reels(), screen.Noun{Singular: "reel", Plural: "reels"}),
			headers: screen.ReelColumns,
			row:     screen.ReelRow,
			id:      func(r api.Reel) string { return r.ID },
			label:   func(r api.Reel) string { return r.DisplayTitle() },
			catalog: true,
			users:   true,
			create: func(lk *lookup) (*huh.Form, func() api.ReelUpload) {
				return reelForm(lk.cat, lk.users)
			},
		},
		&resourceTab[api.Skill, api.SkillInput]{
			title:   "Skills",
			scr:     screen.New[api.Skill, api.SkillInput](c.Skills(), screen.Noun{Singular: "skill", Plural: "skills"}),
			headers: screen.SkillColumns,
			row:     screen.SkillRow,
			id:      func(s api.Skill) string { return s.ID },
			label:   func(s api.Skill) string { return s.SkillName },
			create:  func(*lookup) (*huh.Form, func() api.SkillInput) { return skillForm(nil) },
			edit: func(s api.Skill, _ *lookup) (*huh.Form, func() api.SkillInput) {
				return skillForm(&s)
			},
		},
		&resourceTab[api.SubSkill, api.SubSkillInput]{
			title:   "Sub-Skills",
			scr:     screen.New[api.SubSkill, api.SubSkillInput](c.SubSkills(), screen.Noun{Singular: "sub-skill", Plural: "sub-skills"}),
			headers: screen.SubSkillColumns,
			row:     screen.SubSkillRow,
			id:      func(s api.SubSkill) string { return s.ID },
			label:   func(s api.SubSkill) string { return s.SubSkillName },
			catalog: true,
			create: func(lk *lookup) (*huh.Form, func() api.SubSkillInput) {
				return subSkillForm(nil, lk.cat)
			},
			edit: func(s api.SubSkill, lk *lookup) (*huh.Form, func() api.SubSkillInput) {
				return subSkillForm(&s, lk.cat)
			},
		},
	}
}

func (t *resourceTab[T, In]) SetNotice(kind screen.NoticeKind, msg string) {
	t.scr.SetNotice(kind, msg)
}
