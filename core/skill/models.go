package skill

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

type Type string

const (
	TypeHard Type = "Hard"
	TypeSoft Type = "Soft"
)

// Skill keeps LatestConfidence as a projection of its most recent ConfidenceLog.
type Skill struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Type             Type        `json:"type"`
	Notes            null.String `json:"notes"`
	LatestConfidence int         `json:"latest_confidence"`
	CreatedAt        time.Time   `json:"created_at"`
}

// ConfidenceLog is an append-only entry of a Skill's confidence history.
type ConfidenceLog struct {
	ID              string    `json:"id"`
	SkillID         string    `json:"skill_id"`
	ConfidenceLevel int       `json:"confidence_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewSkill contains information needed to create a new Skill.
type NewSkill struct {
	Name       string `json:"name" validate:"required,notblank"`
	Type       Type   `json:"type" validate:"required,oneof=Hard Soft"`
	Notes      string `json:"notes"`
	Confidence int    `json:"confidence" validate:"omitempty,min=1,max=5"`
}

func (ns *NewSkill) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Notes = core.CleanString(ns.Notes)
	if ns.Confidence == 0 {
		ns.Confidence = 1
	}
	return validate.Struct(ns)
}

// UpdateSkill defines what details of a Skill may be modified. Confidence is updated separately.
type UpdateSkill struct {
	Name  string `json:"name" validate:"required,notblank"`
	Type  Type   `json:"type" validate:"required,oneof=Hard Soft"`
	Notes string `json:"notes"`
}

func (us *UpdateSkill) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Notes = core.CleanString(us.Notes)
	return validate.Struct(us)
}

type UpdateConfidence struct {
	Level int `json:"level" validate:"required,min=1,max=5"`
}

func (uc UpdateConfidence) Validate(validate *validator.Validate) error {
	return validate.Struct(uc)
}
