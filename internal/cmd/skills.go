package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/tui"
)

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Manage skills",
		Long: `List, add, edit and delete top-level skills.

Examples:
  skilladmin skills list
  skilladmin skills create --name Music --color "#4caf50"
  skilladmin skills delete 64f1c2 --yes
`,
	}
	cmd.AddCommand(skills.listCmd(), newSkillCreateCmd(), newSkillUpdateCmd(), skills.deleteCmd())
	return cmd
}

func bindSkillFlags(f *pflag.FlagSet, in *api.SkillInput) {
	f.StringVar(&in.SkillName, "name", "", "skill name")
	f.StringVar(&in.Color, "color", "", "display color, e.g. #4caf50")
}

func newSkillCreateCmd() *cobra.Command {
	var in api.SkillInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a skill",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, rt *runtime, _ []string) error {
			return skills.create(ctx, rt, in)
		}),
	}
	bindSkillFlags(cmd.Flags(), &in)
	return cmd
}

func newSkillUpdateCmd() *cobra.Command {
	var in api.SkillInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a skill",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, rt *runtime, args []string) error {
			return skills.update(ctx, rt, args[0], in)
		}),
	}
	bindSkillFlags(cmd.Flags(), &in)
	return cmd
}

func newSubSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subskills",
		Aliases: []string{"sub-skills"},
		Short:   "Manage sub-skills",
		Long: `List, add, edit and delete sub-skills. Every sub-skill belongs to one skill.

Examples:
  skilladmin subskills list
  skilladmin subskills create --name Guitar --skill 64f1c2
  skilladmin subskills create --name Guitar   # pick the skill interactively
`,
	}
	cmd.AddCommand(subSkills.listCmd(), newSubSkillCreateCmd(), newSubSkillUpdateCmd(), subSkills.deleteCmd())
	return cmd
}

func bindSubSkillFlags(f *pflag.FlagSet, in *api.SubSkillInput) {
	f.StringVar(&in.SubSkillName, "name", "", "sub-skill name")
	f.StringVar(&in.SkillID, "skill", "", "parent skill id")
	f.StringVar(&in.Color, "color", "", "display color, e.g. #4caf50")
}

func newSubSkillCreateCmd() *cobra.Command {
	var in api.SubSkillInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a sub-skill",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, rt *runtime, _ []string) error {
			if strings.TrimSpace(in.SkillID) == "" && tui.ShouldPrompt() {
				id, err := pickSkill(ctx, rt)
				if err != nil {
					return err
				}
				in.SkillID = id
			}
			return subSkills.create(ctx, rt, in)
		}),
	}
	bindSubSkillFlags(cmd.Flags(), &in)
	return cmd
}

func newSubSkillUpdateCmd() *cobra.Command {
	var in api.SubSkillInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a sub-skill",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, rt *runtime, args []string) error {
			return subSkills.update(ctx, rt, args[0], in)
		}),
	}
	bindSubSkillFlags(cmd.Flags(), &in)
	return cmd
}

// pickSkill offers the catalog's skills in a select prompt.
func pickSkill(ctx context.Context, rt *runtime) (string, error) {
	cat, err := rt.client.Catalog().SkillsAndSubSkills(ctx)
	if err != nil {
		return "", rt.apiError("load skills", err)
	}
	choices := make([]tui.Choice, 0, len(cat.Skills))
	for _, s := range cat.Skills {
		choices = append(choices, tui.Choice{Label: s.SkillName, Value: s.ID})
	}
	id, err := tui.PromptForSelect("Skill", choices)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInputMissing, "no skill selected", err).
			WithSuggestion("Create a skill first with 'skilladmin skills create'")
	}
	return id, nil
}
