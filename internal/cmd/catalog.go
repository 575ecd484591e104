package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
)

// catalogReport prints skills with their sub-skills; JSON and YAML get
// the catalog as returned by the API.
type catalogReport struct {
	api.Catalog `yaml:",inline"`
}

func (c catalogReport) Table() *ux.Table {
	t := ux.NewTable("ID", "SKILL", "SUB-SKILLS")
	t.Empty = "No skills found."
	for _, s := range c.Skills {
		var names []string
		for _, sub := range c.SubSkillsOf(s.ID) {
			names = append(names, sub.SubSkillName)
		}
		subs := strings.Join(names, ", ")
		if subs == "" {
			subs = "-"
		}
		t.AddRow(s.ID, s.SkillName, subs)
	}
	return t
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show every skill and its sub-skills",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, rt *runtime, _ []string) error {
			cat, err := rt.client.Catalog().SkillsAndSubSkills(ctx)
			if err != nil {
				return rt.apiError("load catalog", err)
			}
			return rt.out.Format(catalogReport{Catalog: *cat})
		}),
	}
}
