package activity

import (
	"time"

	"github.com/examforge/examforge/internal/examgen"
)

// Status is the lifecycle state of an activity.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Metadata describes an activity. GroupName and SourceMaterial are nil when
// the activity has no associated class or material.
type Metadata struct {
	Title          string                  `json:"title"`
	Language       string                  `json:"language"`
	Difficulty     string                  `json:"difficulty"`
	Topics         string                  `json:"topics"`
	QuestionTypes  []examgen.QuestionType  `json:"questionTypes,omitempty"`
	GroupName      *string                 `json:"groupName,omitempty"`
	SourceMaterial *examgen.SourceMaterial `json:"sourceMaterial,omitempty"`
}

// Content holds the questions of an activity. Questions is the base set;
// Versions, when present, are shuffled presentations of it. AnswerKey is
// the key for the base set.
type Content struct {
	Questions examgen.QuestionSet      `json:"questions"`
	AnswerKey []examgen.AnswerKeyEntry `json:"answerKey,omitempty"`
	Versions  []examgen.Version        `json:"versions,omitempty"`
}

// Activity is an assembled, possibly persisted, question set.
type Activity struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId,omitempty"`
	Status    Status    `json:"status"`
	Metadata  Metadata  `json:"metadata"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Version returns the version with the given label, or nil.
func (a *Activity) Version(label string) *examgen.Version {
	for i := range a.Content.Versions {
		if a.Content.Versions[i].Label == label {
			return &a.Content.Versions[i]
		}
	}
	return nil
}

// QuestionPatch is a partial update to one question. Nil fields are left
// unchanged.
type QuestionPatch struct {
	Type          *examgen.QuestionType `json:"type,omitempty"`
	Text          *string               `json:"question,omitempty"`
	Options       *[]string             `json:"options,omitempty"`
	CorrectAnswer *string               `json:"correctAnswer,omitempty"`
}
