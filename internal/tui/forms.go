package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/skilladmin/internal/api"
)

// formKeys lets esc abort an embedded form as well as ctrl+c.
func formKeys() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))
	return km
}

func newForm(fields ...huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(fields...)).
		WithKeyMap(formKeys()).
		WithShowHelp(true)
}

// loginForm binds the email and password inputs. The email survives a
// failed attempt; the password does not.
type loginForm struct {
	form     *huh.Form
	email    string
	password string
}

func newLoginForm(email string) *loginForm {
	lf := &loginForm{email: email}
	lf.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("admin@example.com").
			Value(&lf.email).
			Validate(required("Email")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&lf.password).
			Validate(required("Password")),
	)).WithShowHelp(true)
	return lf
}

func userForm(u *api.User) (*huh.Form, func() api.UserInput) {
	var in api.UserInput
	if u != nil {
		in = api.UserInput{
			FullName:   u.FullName,
			Email:      u.Email,
			Phone:      u.Phone,
			Role:       u.Role,
			Occupation: u.Occupation,
			AboutUser:  u.AboutUser,
		}
	}
	password := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&in.Password)
	if u == nil {
		password = password.Validate(required("Password"))
	} else {
		password = password.Description("Leave blank to keep the current password")
	}

	form := newForm(
		huh.NewInput().Title("Full Name").Value(&in.FullName).Validate(required("Full Name")),
		huh.NewInput().Title("Email").Value(&in.Email).Validate(required("Email")),
		huh.NewInput().Title("Phone").Value(&in.Phone),
		password,
		huh.NewInput().Title("Occupation").Value(&in.Occupation),
		huh.NewText().Title("About User").Value(&in.AboutUser),
	)
	return form, func() api.UserInput { return trimUser(in) }
}

func trimUser(in api.UserInput) api.UserInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Occupation = strings.TrimSpace(in.Occupation)
	return in
}

func skillForm(s *api.Skill) (*huh.Form, func() api.SkillInput) {
	var in api.SkillInput
	if s != nil {
		in = api.SkillInput{SkillName: s.SkillName, Color: s.Color}
	}
	form := newForm(
		huh.NewInput().Title("Skill Name").Value(&in.SkillName).Validate(required("Skill Name")),
		huh.NewInput().Title("Color").Placeholder("#4caf50").Value(&in.Color),
	)
	return form, func() api.SkillInput {
		return api.SkillInput{SkillName: strings.TrimSpace(in.SkillName), Color: strings.TrimSpace(in.Color)}
	}
}

func subSkillForm(s *api.SubSkill, cat *api.Catalog) (*huh.Form, func() api.SubSkillInput) {
	var in api.SubSkillInput
	if s != nil {
		in = api.SubSkillInput{SubSkillName: s.SubSkillName, SkillID: s.Skill.ID, Color: s.Color}
	}
	form := newForm(
		huh.NewInput().Title("Sub-Skill Name").Value(&in.SubSkillName).Validate(required("Sub-Skill Name")),
		huh.NewSelect[string]().
			Title("Parent Skill").
			Options(skillOptions(cat)...).
			Value(&in.SkillID).
			Validate(required("Parent Skill")),
		huh.NewInput().Title("Color").Placeholder("#4caf50").Value(&in.Color),
	)
	return form, func() api.SubSkillInput {
		return api.SubSkillInput{
			SubSkillName: strings.TrimSpace(in.SubSkillName),
			SkillID:      in.SkillID,
			Color:        strings.TrimSpace(in.Color),
		}
	}
}

// reelForm offers only the sub-skills of the chosen skill.
func reelForm(cat *api.Catalog, users []api.User) (*huh.Form, func() api.ReelUpload) {
	var in api.ReelUpload
	form := newForm(
		huh.NewInput().Title("Title").Value(&in.Title).Validate(required("Title")),
		huh.NewText().Title("Description").Value(&in.Description),
		huh.NewSelect[string]().
			Title("User").
			Options(userOptions(users)...).
			Value(&in.UserID).
			Validate(required("User")),
		huh.NewSelect[string]().
			Title("Skill").
			Options(skillOptions(cat)...).
			Value(&in.SkillID).
			Validate(required("Skill")),
		huh.NewSelect[string]().
			Title("Sub-Skill").
			OptionsFunc(func() []huh.Option[string] {
				return subSkillOptions(cat, in.SkillID)
			}, &in.SkillID).
			Value(&in.SubSkillID),
		huh.NewInput().Title("Video file").Value(&in.VideoPath).Validate(optionalFile),
		huh.NewInput().Title("Thumbnail file").Value(&in.ThumbnailPath).Validate(optionalFile),
	)
	return form, func() api.ReelUpload {
		in.Title = strings.TrimSpace(in.Title)
		in.UserID = strings.TrimSpace(in.UserID)
		in.VideoPath = strings.TrimSpace(in.VideoPath)
		in.ThumbnailPath = strings.TrimSpace(in.ThumbnailPath)
		return in
	}
}

func userOptions(users []api.User) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(users))
	for _, u := range users {
		opts = append(opts, huh.NewOption(u.Label(), u.ID))
	}
	return opts
}

func skillOptions(cat *api.Catalog) []huh.Option[string] {
	if cat == nil {
		return nil
	}
	opts := make([]huh.Option[string], 0, len(cat.Skills))
	for _, s := range cat.Skills {
		opts = append(opts, huh.NewOption(s.SkillName, s.ID))
	}
	return opts
}

func subSkillOptions(cat *api.Catalog, skillID string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("None", "")}
	if cat == nil {
		return opts
	}
	for _, s := range cat.SubSkillsOf(skillID) {
		opts = append(opts, huh.NewOption(s.SubSkillName, s.ID))
	}
	return opts
}

func optionalFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s does not exist", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// confirmForm asks before deleting. The answer lands in *ok.
func confirmForm(title string, ok *bool) *huh.Form {
	return newForm(
		huh.NewConfirm().
			Title(title).
			Affirmative("Delete").
			Negative("Cancel").
			Value(ok),
	)
}
