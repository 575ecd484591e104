package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// NotAvailable is shown for empty display fields.
const NotAvailable = "N/A"

// Ref is a reference to another record. The server sends either the bare
// id or the populated document, so both decode into a Ref.
type Ref struct {
	ID   string `json:"_id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// UnmarshalJSON accepts "id" or {"_id": ..., "<kind>Name"/"fullName": ...}.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	var doc struct {
		ID           string `json:"_id"`
		SkillName    string `json:"skillName"`
		SubSkillName string `json:"subSkillName"`
		FullName     string `json:"fullName"`
		Name         string `json:"name"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = Ref{ID: doc.ID, Name: firstNonEmpty(doc.SkillName, doc.SubSkillName, doc.FullName, doc.Name)}
	return nil
}

// Refs is a list of references that also tolerates a single value.
type Refs []Ref

// UnmarshalJSON accepts an array, a single reference or null.
func (rs *Refs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*rs = nil
		return nil
	case data[0] == '[':
		var list []Ref
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*rs = list
		return nil
	default:
		var one Ref
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*rs = Refs{one}
		return nil
	}
}

// Names joins the non-empty names with ", ", or returns N/A.
func (rs Refs) Names() string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	if len(names) == 0 {
		return NotAvailable
	}
	return strings.Join(names, ", ")
}

// User is a platform user.
type User struct {
	ID         string `json:"_id" yaml:"id"`
	FullName   string `json:"fullName,omitempty" yaml:"full_name,omitempty"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone      string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Role       string `json:"role,omitempty" yaml:"role,omitempty"`
	Occupation string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	AboutUser  string `json:"aboutUser,omitempty" yaml:"about_user,omitempty"`
}

// Label names the user in pickers.
func (u User) Label() string {
	switch {
	case u.FullName != "" && u.Email != "":
		return u.FullName + " <" + u.Email + ">"
	case u.FullName != "":
		return u.FullName
	case u.Email != "":
		return u.Email
	}
	return u.ID
}

// Skill is a top-level skill.
type Skill struct {
	ID        string `json:"_id" yaml:"id"`
	SkillName string `json:"skillName" yaml:"skill_name"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
}

// SubSkill belongs to one Skill.
type SubSkill struct {
	ID           string `json:"_id" yaml:"id"`
	SubSkillName string `json:"subSkillName" yaml:"sub_skill_name"`
	Skill        Ref    `json:"skillId" yaml:"skill"`
	Color        string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ParentName is the parent skill's name, or N/A when not populated.
func (s SubSkill) ParentName() string {
	if s.Skill.Name == "" {
		return NotAvailable
	}
	return s.Skill.Name
}

// Reel is an uploaded short video.
type Reel struct {
	ID          string `json:"_id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Video       string `json:"video,omitempty" yaml:"video,omitempty"`
	User        Ref    `json:"user" yaml:"user"`
	Skills      Refs   `json:"skillId" yaml:"skills"`
	SubSkills   Refs   `json:"subSkillsId" yaml:"sub_skills"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// DisplayTitle is the title or N/A.
func (r Reel) DisplayTitle() string {
	if r.Title == "" {
		return NotAvailable
	}
	return r.Title
}

// UserName is the uploader's full name or N/A.
func (r Reel) UserName() string {
	if r.User.Name == "" {
		return NotAvailable
	}
	return r.User.Name
}

// CreatedDate formats CreatedAt as YYYY-MM-DD, or N/A when missing or unparseable.
func (r Reel) CreatedDate() string {
	return formatDate(r.CreatedAt)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.DateOnly)
		}
	}
	return NotAvailable
}

// Ack is the body of a mutation that only reports a message.
type Ack struct {
	Message string `json:"message" yaml:"message"`
}

// UnmarshalJSON takes message, falling back to msg.
func (a *Ack) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Message = firstNonEmpty(raw.Message, raw.Msg)
	return nil
}

// Catalog is every skill and sub-skill, used to fill pickers.
type Catalog struct {
	Skills    []Skill    `json:"skills" yaml:"skills"`
	SubSkills []SubSkill `json:"subSkills" yaml:"sub_skills"`
}

// SubSkillsOf returns the sub-skills whose parent is skillID.
func (c *Catalog) SubSkillsOf(skillID string) []SubSkill {
	var out []SubSkill
	for _, s := range c.SubSkills {
		if s.Skill.ID == skillID {
			out = append(out, s)
		}
	}
	return out
}

// SkillName looks up a skill's name by id.
func (c *Catalog) SkillName(id string) string {
	for _, s := range c.Skills {
		if s.ID == id {
			return s.SkillName
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
