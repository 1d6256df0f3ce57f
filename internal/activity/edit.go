package activity

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/examforge/internal/examgen"
)

// Edits apply to the base set when version is empty, otherwise to the
// version with that label. When the edited set carries an answer key the
// key is re-derived, and an edit whose key cannot be derived is rejected
// without changing the activity.

// Move relocates the question id to the 0-based position to.
func (a *Activity) Move(version, id string, to int) error {
	return a.edit(version, func(qs examgen.QuestionSet) (examgen.QuestionSet, error) {
		from := qs.Index(id)
		if from < 0 {
			return nil, &ErrQuestionNotFound{QuestionID: id}
		}
		if to < 0 || to >= len(qs) {
			return nil, &ErrIndexOutOfRange{Index: to, Len: len(qs)}
		}
		q := qs[from]
		qs = slices.Delete(qs, from, from+1)
		return slices.Insert(qs, to, q), nil
	})
}

// Remove deletes the question id.
func (a *Activity) Remove(version, id string) error {
	return a.edit(version, func(qs examgen.QuestionSet) (examgen.QuestionSet, error) {
		i := qs.Index(id)
		if i < 0 {
			return nil, &ErrQuestionNotFound{QuestionID: id}
		}
		return slices.Delete(qs, i, i+1), nil
	})
}

// AppendBlank adds an empty question of type t at the end and returns it.
func (a *Activity) AppendBlank(version string, t examgen.QuestionType) (examgen.Question, error) {
	if !t.Valid() {
		return examgen.Question{}, &ErrInvalid{Fields: []string{"type"}}
	}
	q := examgen.Question{ID: uuid.NewString(), Type: t}
	if t == examgen.TypeMultipleChoice {
		q.Options = []string{}
	}
	err := a.edit(version, func(qs examgen.QuestionSet) (examgen.QuestionSet, error) {
		return append(qs, q), nil
	})
	if err != nil {
		return examgen.Question{}, err
	}
	return q, nil
}

// UpdateQuestion applies patch to the question id.
func (a *Activity) UpdateQuestion(version, id string, patch QuestionPatch) error {
	return a.edit(version, func(qs examgen.QuestionSet) (examgen.QuestionSet, error) {
		i := qs.Index(id)
		if i < 0 {
			return nil, &ErrQuestionNotFound{QuestionID: id}
		}
		q := &qs[i]
		if patch.Type != nil {
			if !patch.Type.Valid() {
				return nil, &ErrInvalid{Fields: []string{"type"}}
			}
			q.Type = *patch.Type
		}
		if patch.Text != nil {
			q.Text = *patch.Text
		}
		if patch.Options != nil {
			q.Options = slices.Clone(*patch.Options)
		}
		if patch.CorrectAnswer != nil {
			q.CorrectAnswer = *patch.CorrectAnswer
		}
		if q.Type != examgen.TypeMultipleChoice {
			q.Options = nil
		}
		return qs, nil
	})
}

// RegenerateVersions replaces the versions with count fresh shuffles of
// the base set.
func (a *Activity) RegenerateVersions(count int, withKey bool, rng *rand.Rand) error {
	versions, err := examgen.GenerateVersions(a.Content.Questions, count, withKey, rng)
	if err != nil {
		return err
	}
	a.Content.Versions = versions
	a.touch()
	return nil
}

func (a *Activity) edit(version string, fn func(examgen.QuestionSet) (examgen.QuestionSet, error)) error {
	set, key, err := a.target(version)
	if err != nil {
		return err
	}

	next, err := fn(set.Clone())
	if err != nil {
		return err
	}
	var nextKey []examgen.AnswerKeyEntry
	if *key != nil {
		nextKey, err = examgen.DraftAnswerKey(next)
		if err != nil {
			return err
		}
	}

	*set = next
	*key = nextKey
	a.touch()
	return nil
}

func (a *Activity) target(version string) (*examgen.QuestionSet, *[]examgen.AnswerKeyEntry, error) {
	if version == "" {
		return &a.Content.Questions, &a.Content.AnswerKey, nil
	}
	v := a.Version(version)
	if v == nil {
		return nil, nil, &ErrVersionNotFound{Label: version}
	}
	return &v.Questions, &v.AnswerKey, nil
}

func (a *Activity) touch() {
	a.UpdatedAt = time.Now().UTC()
}
