package screen

import "github.com/felixgeelhaar/skilladmin/internal/api"

// Column headers and row renderers shared by the dashboard tables and the
// CLI's text output.
var (
	UserColumns     = []string{"ID", "NAME", "EMAIL", "PHONE", "ROLE"}
	SkillColumns    = []string{"ID", "SKILL", "COLOR"}
	SubSkillColumns = []string{"ID", "SUB-SKILL", "PARENT SKILL", "COLOR"}
	ReelColumns     = []string{"ID", "TITLE", "USER", "SKILLS", "SUB-SKILLS", "CREATED"}
)

func UserRow(u api.User) []string {
	return []string{u.ID, orNA(u.FullName), orNA(u.Email), orNA(u.Phone), orNA(u.Role)}
}

func SkillRow(s api.Skill) []string {
	return []string{s.ID, orNA(s.SkillName), orNA(s.Color)}
}

func SubSkillRow(s api.SubSkill) []string {
	return []string{s.ID, orNA(s.SubSkillName), s.ParentName(), orNA(s.Color)}
}

func ReelRow(r api.Reel) []string {
	return []string{r.ID, r.DisplayTitle(), r.UserName(), r.Skills.Names(), r.SubSkills.Names(), r.CreatedDate()}
}

func orNA(s string) string {
	if s == "" {
		return api.NotAvailable
	}
	return s
}
