package api

import (
	"fmt"
	"strings"
)

// DefaultUserRole is applied when a new user has no role.
const DefaultUserRole = "User"

// UserInput is the body for adding or updating a user.
type UserInput struct {
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	AboutUser  string `json:"aboutUser,omitempty"`
}

func (in UserInput) validateCreate() error {
	var missing []string
	if strings.TrimSpace(in.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	return missingFields(missing)
}

// SkillInput is the body for adding or updating a skill.
type SkillInput struct {
	SkillName string `json:"skillName,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (in SkillInput) validate() error {
	if strings.TrimSpace(in.SkillName) == "" {
		return missingFields([]string{"skillName"})
	}
	return nil
}

// SubSkillInput is the body for adding or updating a sub-skill.
type SubSkillInput struct {
	SubSkillName string `json:"subSkillName,omitempty"`
	SkillID      string `json:"skillId,omitempty"`
	Color        string `json:"color,omitempty"`
}

func (in SubSkillInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.SubSkillName) == "" {
		missing = append(missing, "subSkillName")
	}
	if strings.TrimSpace(in.SkillID) == "" {
		missing = append(missing, "skillId")
	}
	return missingFields(missing)
}

// ReelUpload is the multipart form for a new reel. VideoPath and
// ThumbnailPath are local files; either may be empty.
type ReelUpload struct {
	Title         string
	Description   string
	UserID        string
	SkillID       string
	SubSkillID    string
	VideoPath     string
	ThumbnailPath string
}

func (in ReelUpload) validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(in.SkillID) == "" {
		missing = append(missing, "skillId")
	}
	return missingFields(missing)
}

func (in ReelUpload) form() *Multipart {
	f := NewMultipart().
		Field("title", in.Title).
		Field("description", in.Description).
		Field("user", in.UserID).
		Field("skillId", in.SkillID).
		Field("subSkillsId", in.SubSkillID)
	if in.VideoPath != "" {
		f.FilePath("reelvideo", in.VideoPath)
	}
	if in.ThumbnailPath != "" {
		f.FilePath("thumbnail", in.ThumbnailPath)
	}
	return f
}

func missingFields(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(fields, ", "))
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return nil
}
