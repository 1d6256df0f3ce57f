package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/examforge/examforge/internal/examgen"
)

// Assemble maps metadata and content into a new draft activity with a
// fresh id and timestamps. Question ids are made unique within the base
// set, and version questions follow the base's replacement ids so every
// version keeps the base's id set.
func Assemble(meta Metadata, content Content) (*Activity, error) {
	meta = normalizeMetadata(meta)
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}

	var reissued []reissuedID
	content.Questions, reissued = uniqueIDs(content.Questions.Clone())
	content.Versions = lo.Map(content.Versions, func(v examgen.Version, _ int) examgen.Version {
		v.Questions = followIDs(v.Questions.Clone(), reissued)
		return v
	})
	for _, v := range content.Versions {
		if strings.TrimSpace(v.Label) == "" {
			return nil, &ErrInvalid{Fields: []string{"versions.label"}}
		}
	}

	now := time.Now().UTC()
	return &Activity{
		ID:        uuid.NewString(),
		Status:    StatusDraft,
		Metadata:  meta,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FromResult maps a generation result into activity metadata and content.
func FromResult(res *examgen.Result) (Metadata, Content) {
	cfg := res.Config
	meta := Metadata{
		Title:          cfg.Title,
		Language:       cfg.Language,
		Difficulty:     cfg.Difficulty,
		Topics:         cfg.Topics,
		QuestionTypes:  cfg.Types.List(),
		GroupName:      cfg.GroupName,
		SourceMaterial: cfg.SourceMaterial,
	}
	content := Content{
		Questions: res.Questions.Clone(),
		AnswerKey: res.AnswerKey,
		Versions:  res.Versions,
	}
	return meta, content
}

func normalizeMetadata(m Metadata) Metadata {
	m.Title = strings.TrimSpace(m.Title)
	m.Language = strings.TrimSpace(m.Language)
	m.Difficulty = strings.TrimSpace(m.Difficulty)
	m.Topics = strings.TrimSpace(m.Topics)
	if m.GroupName != nil && strings.TrimSpace(*m.GroupName) == "" {
		m.GroupName = nil
	}
	if m.SourceMaterial != nil && strings.TrimSpace(m.SourceMaterial.Title) == "" && strings.TrimSpace(m.SourceMaterial.Text) == "" {
		m.SourceMaterial = nil
	}
	return m
}

func validateMetadata(m Metadata) error {
	var fields []string
	if m.Title == "" {
		fields = append(fields, "title")
	}
	for _, t := range m.QuestionTypes {
		if !t.Valid() {
			fields = append(fields, "questionTypes")
			break
		}
	}
	if len(fields) > 0 {
		return &ErrInvalid{Fields: fields}
	}
	return nil
}

// reissuedID records the id a base question ended up with.
type reissuedID struct {
	old, id string
	q        examgen.Question
}

// uniqueIDs fills missing ids and reissues duplicates, keeping the first
// occurrence of each id.
func uniqueIDs(qs examgen.QuestionSet) (examgen.QuestionSet, []reissuedID) {
	ids := make([]reissuedID, len(qs))
	seen := make(map[string]bool, len(qs))
	for i := range qs {
		old := qs[i].ID
		if old == "" || seen[old] {
			qs[i].ID = uuid.NewString()
		}
		seen[qs[i].ID] = true
		ids[i] = reissuedID{old: old, id: qs[i].ID, q: qs[i]}
	}
	return qs, ids
}

// followIDs gives each version question the id its base counterpart got.
// Questions sharing an original id are told apart by type and text.
// Questions with no base counterpart are made unique like the base.
func followIDs(qs examgen.QuestionSet, base []reissuedID) examgen.QuestionSet {
	used := make([]bool, len(base))
	match := func(q examgen.Question, sameContent bool) int {
		for i, b := range base {
			if used[i] || b.old != q.ID {
				continue
			}
			if sameContent && (b.q.Type != q.Type || b.q.Text != q.Text) {
				continue
			}
			return i
		}
		return -1
	}

	seen := make(map[string]bool, len(qs))
	var unmatched []int
	for i := range qs {
		j := match(qs[i], true)
		if j < 0 {
			unmatched = append(unmatched, i)
			continue
		}
		used[j] = true
		qs[i].ID = base[j].id
		seen[qs[i].ID] = true
	}
	for _, i := range unmatched {
		if j := match(qs[i], false); j >= 0 {
			used[j] = true
			qs[i].ID = base[j].id
		} else if qs[i].ID == "" || seen[qs[i].ID] {
			qs[i].ID = uuid.NewString()
		}
		seen[qs[i].ID] = true
	}
	return qs
}
