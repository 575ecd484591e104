package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/tui"
)

func newReelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reels",
		Short: "Manage uploaded reels",
		Long: `List, upload and delete reels. Reels cannot be edited once uploaded.

Examples:
  skilladmin reels list --limit 50
  skilladmin reels upload --title "First chords" --user 64f1c2 --skill 64f1d0 \
    --video ./chords.mp4 --thumbnail ./chords.jpg
  skilladmin reels delete 64f1c2 --yes
`,
	}
	cmd.AddCommand(reels.listCmd(), newReelUploadCmd(), reels.deleteCmd())
	return cmd
}

func newReelUploadCmd() *cobra.Command {
	var in api.ReelUpload

	cmd := &cobra.Command{
		Use:     "upload",
		Aliases: []string{"create"},
		Short:   "Upload a reel with optional video and thumbnail files",
		Args:    cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, rt *runtime, _ []string) error {
			if strings.TrimSpace(in.UserID) == "" && tui.ShouldPrompt() {
				id, err := pickUser(ctx, rt)
				if err != nil {
					return err
				}
				in.UserID = id
			}
			if strings.TrimSpace(in.SkillID) == "" && tui.ShouldPrompt() {
				if err := pickReelSkills(ctx, rt, &in); err != nil {
					return err
				}
			}
			return reels.create(ctx, rt, in)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "reel title")
	f.StringVar(&in.Description, "description", "", "reel description")
	f.StringVar(&in.UserID, "user", "", "id of the user the reel belongs to")
	f.StringVar(&in.SkillID, "skill", "", "skill id")
	f.StringVar(&in.SubSkillID, "subskill", "", "sub-skill id (optional)")
	f.StringVar(&in.VideoPath, "video", "", "path to the video file")
	f.StringVar(&in.ThumbnailPath, "thumbnail", "", "path to the thumbnail image")
	return cmd
}

// pickReelSkills prompts for a skill and then one of its sub-skills.
func pickReelSkills(ctx context.Context, rt *runtime, in *api.ReelUpload) error {
	cat, err := rt.client.Catalog().SkillsAndSubSkills(ctx)
	if err != nil {
		return rt.apiError("load skills", err)
	}

	choices := make([]tui.Choice, 0, len(cat.Skills))
	for _, s := range cat.Skills {
		choices = append(choices, tui.Choice{Label: s.SkillName, Value: s.ID})
	}
	if in.SkillID, err = tui.PromptForSelect("Skill", choices); err != nil {
		return errors.Wrap(errors.ErrCodeInputMissing, "no skill selected", err)
	}

	subs := cat.SubSkillsOf(in.SkillID)
	if len(subs) == 0 || in.SubSkillID != "" {
		return nil
	}
	choices = []tui.Choice{{Label: "None", Value: ""}}
	for _, s := range subs {
		choices = append(choices, tui.Choice{Label: s.SubSkillName, Value: s.ID})
	}
	if in.SubSkillID, err = tui.PromptForSelect("Sub-skill", choices); err != nil {
		return errors.Wrap(errors.ErrCodeInputMissing, "no sub-skill selected", err)
	}
	return nil
}

func pickUser(ctx context.Context, rt *runtime) (string, error) {
	page, err := rt.client.Users().List(ctx, 0, api.MaxPageSize)
	if err != nil {
		return "", rt.apiError("load users", err)
	}
	id, err := tui.PromptForSelect("User", userChoices(page.Items))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInputMissing, "no user selected", err).
			WithSuggestion("Create a user first with 'skilladmin users create'")
	}
	return id, nil
}

func userChoices(users []api.User) []tui.Choice {
	choices := make([]tui.Choice, 0, len(users))
	for _, u := range users {
		choices = append(choices, tui.Choice{Label: u.Label(), Value: u.ID})
	}
	return choices
}
