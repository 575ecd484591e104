package api

// Skills manages top-level skills.
type Skills struct {
	collection[Skill, SkillInput]
}

// Skills returns the skills service.
func (c *Client) Skills() *Skills {
	return &Skills{collection[Skill, SkillInput]{
		c: c,
		ep: endpoints{
			name:    "skills",
			list:    "/admin/get/skills",
			create:  "/skill/add",
			update:  "/skill/update/{id}",
			remove:  "/skill/delete/{id}",
			shape:   listShape{items: "skills", total: "totalSkills"},
			itemKey: "skill",
		},
		validate: SkillInput.validate,
		fromInput: func(id string, in SkillInput) Skill {
			return Skill{ID: id, SkillName: in.SkillName, Color: in.Color}
		},
	}}
}

// SubSkills manages sub-skills.
type SubSkills struct {
	collection[SubSkill, SubSkillInput]
}

// SubSkills returns the sub-skills service.
func (c *Client) SubSkills() *SubSkills {
	return &SubSkills{collection[SubSkill, SubSkillInput]{
		c: c,
		ep: endpoints{
			name:    "subskills",
			list:    "/admin/get/subSkills",
			create:  "/subskill/add",
			update:  "/subskill/update/{id}",
			remove:  "/subskill/delete/{id}",
			shape:   listShape{items: "subSkills", total: "totalSubSkills"},
			itemKey: "subSkill",
		},
		validate: SubSkillInput.validate,
		fromInput: func(id string, in SubSkillInput) SubSkill {
			return SubSkill{ID: id, SubSkillName: in.SubSkillName, Skill: Ref{ID: in.SkillID}, Color: in.Color}
		},
	}}
}
