package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/screen"
	"github.com/felixgeelhaar/skilladmin/internal/tui"
)

// resource binds one API collection to its printed shape.
type resource[T any, In any] struct {
	noun    screen.Noun
	headers []string
	row     func(T) []string
	api     func(*api.Client) api.Resource[T, In]
}

func (r resource[T, In]) screen(rt *runtime) *screen.Screen[T, In] {
	return screen.New[T, In](r.api(rt.client), r.noun)
}

func (r resource[T, In]) listCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + r.noun.Plural,
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, rt *runtime, _ []string) error {
			scr := r.screen(rt)
			if err := paginate(scr, rt, page, limit); err != nil {
				return err
			}
			if err := scr.Refresh(ctx); err != nil {
				return rt.apiError("list "+r.noun.Plural, err)
			}
			return rt.out.Format(newListing(scr.View(), r.noun, r.headers, r.row))
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows per page (default from defaults.page_size)")
	return cmd
}

// pager is the part of a screen paginate needs.
type pager interface {
	SetPage(page int)
	SetSize(size int) bool
}

func paginate(p pager, rt *runtime, page, limit int) error {
	if limit == 0 {
		limit = rt.cfg.Defaults.PageSize
	}
	if page < 1 {
		return errors.New(errors.ErrCodeInputInvalid, fmt.Sprintf("--page must be 1 or greater, got %d", page))
	}
	if !p.SetSize(limit) {
		return errors.New(errors.ErrCodeInputInvalid, fmt.Sprintf("--limit must be between 1 and %d, got %d", api.MaxPageSize, limit))
	}
	p.SetPage(page - 1)
	return nil
}

func (r resource[T, In]) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + r.noun.Singular,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, rt *runtime, args []string) error {
			id := args[0]
			ok, err := confirmDelete(r.noun.Singular+" "+id, yes)
			if err != nil {
				return err
			}
			if !ok {
				return rt.out.Format(outcome{Message: "Cancelled."})
			}
			scr := r.screen(rt)
			return r.finish(rt, scr, "delete "+r.noun.Singular, scr.Delete(ctx, id))
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// finish prints the notice a mutation left on the screen.
func (r resource[T, In]) finish(rt *runtime, scr *screen.Screen[T, In], op string, err error) error {
	if err != nil {
		return rt.apiError(op, err)
	}
	msg := "Done."
	if n := scr.View().Notice; n != nil {
		msg = n.Message
	}
	rt.log.Info(op, "result", msg)
	return rt.out.Format(outcome{Message: msg})
}

func (r resource[T, In]) create(ctx context.Context, rt *runtime, in In) error {
	scr := r.screen(rt)
	return r.finish(rt, scr, "create "+r.noun.Singular, scr.Create(ctx, in))
}

func (r resource[T, In]) update(ctx context.Context, rt *runtime, id string, in In) error {
	scr := r.screen(rt)
	return r.finish(rt, scr, "update "+r.noun.Singular, scr.Update(ctx, id, in))
}

func confirmDelete(what string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !tui.ShouldPrompt() {
		return false, errors.New(errors.ErrCodeInputMissing, "missing argument: --yes").
			WithSuggestion("Pass --yes to delete without a prompt")
	}
	ok, err := tui.PromptForConfirmation("Delete "+what+"?", false)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInputInvalid, "confirmation failed", err)
	}
	return ok, nil
}

var users = resource[api.User, api.UserInput]{
	noun:    screen.Noun{Singular: "user", Plural: "users"},
	headers: screen.UserColumns,
	row:     screen.UserRow,
	api:     func(c *api.Client) api.Resource[api.User, api.UserInput] { return c.Users() },
}

var skills = resource[api.Skill, api.SkillInput]{
	noun:    screen.Noun{Singular: "skill", Plural: "skills"},
	headers: screen.SkillColumns,
	row:     screen.SkillRow,
	api:     func(c *api.Client) api.Resource[api.Skill, api.SkillInput] { return c.Skills() },
}

var subSkills = resource[api.SubSkill, api.SubSkillInput]{
	noun:    screen.Noun{Singular: "sub-skill", Plural: "sub-skills"},
	headers: screen.SubSkillColumns,
	row:     screen.SubSkillRow,
	api:     func(c *api.Client) api.Resource[api.SubSkill, api.SubSkillInput] { return c.SubSkills() },
}

var reels = resource[api.Reel, api.ReelUpload]{
	noun:    screen.Noun{Singular: "reel", Plural: "reels"},
	headers: screen.ReelColumns,
	row:     screen.ReelRow,
	api:     func(c *api.Client) api.Resource[api.Reel, api.ReelUpload] { return c.Reels() },
}
