package activity

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/examgen"
)

func sampleSet() examgen.QuestionSet {
	return examgen.QuestionSet{
		{ID: "q1", Type: examgen.TypeMultipleChoice, Text: "Past of 'ir'?", Options: []string{"fui", "vou", "irei"}, CorrectAnswer: "fui"},
		{ID: "q2", Type: examgen.TypeTrueFalse, Text: "'Ser' is irregular.", CorrectAnswer: "true"},
		{ID: "q3", Type: examgen.TypeFillBlanks, Text: "Eu ___ ao cinema ontem.", CorrectAnswer: "fui"},
		{ID: "q4", Type: examgen.TypeOpenQuestions, Text: "Use 'ter' in a sentence."},
	}
}

func sampleMeta() Metadata {
	return Metadata{Title: "Verbs", Language: "portuguese", Difficulty: "b1", Topics: "verbs"}
}

func TestAssemble_Defaults(t *testing.T) {
	before := time.Now().UTC()
	a, err := Assemble(sampleMeta(), Content{Questions: sampleSet()})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, StatusDraft, a.Status)
	assert.Empty(t, a.OwnerID)
	assert.False(t, a.CreatedAt.Before(before))
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Equal(t, sampleSet(), a.Content.Questions)
	assert.Nil(t, a.Metadata.GroupName)
	assert.Nil(t, a.Metadata.SourceMaterial)
}

func TestAssemble_OptionalAssociations(t *testing.T) {
	meta := sampleMeta()
	blank := " "
	meta.GroupName = &blank
	meta.SourceMaterial = &examgen.SourceMaterial{}

	a, err := Assemble(meta, Content{})
	require.NoError(t, err)
	assert.Nil(t, a.Metadata.GroupName)
	assert.Nil(t, a.Metadata.SourceMaterial)

	group := "9B"
	meta.GroupName = &group
	meta.SourceMaterial = &examgen.SourceMaterial{Title: "Chapter 1"}
	a, err = Assemble(meta, Content{})
	require.NoError(t, err)
	require.NotNil(t, a.Metadata.GroupName)
	assert.Equal(t, "9B", *a.Metadata.GroupName)
	assert.Equal(t, "Chapter 1", a.Metadata.SourceMaterial.Title)
}

func TestAssemble_Invalid(t *testing.T) {
	meta := sampleMeta()
	meta.Title = "  "
	meta.QuestionTypes = []examgen.QuestionType{"essay"}

	_, err := Assemble(meta, Content{})
	var inv *ErrInvalid
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, []string{"title", "questionTypes"}, inv.Fields)

	_, err = Assemble(sampleMeta(), Content{Versions: []examgen.Version{{Label: ""}}})
	require.ErrorAs(t, err, &inv)
}

func TestAssemble_UniqueIDs(t *testing.T) {
	qs := examgen.QuestionSet{
		{ID: "x", Type: examgen.TypeOpenQuestions, Text: "a"},
		{ID: "x", Type: examgen.TypeOpenQuestions, Text: "b"},
		{Type: examgen.TypeOpenQuestions, Text: "c"},
	}
	a, err := Assemble(sampleMeta(), Content{Questions: qs, Versions: []examgen.Version{{Label: "A", Questions: qs}}})
	require.NoError(t, err)

	for _, set := range []examgen.QuestionSet{a.Content.Questions, a.Content.Versions[0].Questions} {
		ids := set.IDs()
		assert.Equal(t, "x", ids[0])
		assert.Len(t, lo.Uniq(ids), 3)
	}
	assert.Equal(t, "x", qs[1].ID, "input must not be modified")
}

func TestAssemble_VersionsFollowBaseIDs(t *testing.T) {
	base := examgen.QuestionSet{
		{ID: "x", Type: examgen.TypeOpenQuestions, Text: "a"},
		{ID: "x", Type: examgen.TypeOpenQuestions, Text: "b"},
		{Type: examgen.TypeOpenQuestions, Text: "c"},
		{Type: examgen.TypeOpenQuestions, Text: "d"},
	}
	shuffled := examgen.QuestionSet{base[3], base[1], base[0], base[2]}
	reversed := examgen.QuestionSet{base[3], base[2], base[1], base[0]}

	a, err := Assemble(sampleMeta(), Content{Questions: base, Versions: []examgen.Version{
		{Label: "A", Questions: shuffled},
		{Label: "B", Questions: reversed},
	}})
	require.NoError(t, err)

	idByText := map[string]string{}
	for _, q := range a.Content.Questions {
		idByText[q.Text] = q.ID
	}
	require.Len(t, lo.Uniq(a.Content.Questions.IDs()), 4)

	for _, v := range a.Content.Versions {
		assert.ElementsMatch(t, a.Content.Questions.IDs(), v.Questions.IDs(), v.Label)
		for _, q := range v.Questions {
			assert.Equal(t, idByText[q.Text], q.ID, "%s %s", v.Label, q.Text)
		}
	}
}

func TestFromResult(t *testing.T) {
	group := "9B"
	res := &examgen.Result{
		Questions: sampleSet(),
		AnswerKey: []examgen.AnswerKeyEntry{{Question: 1, Answer: "A"}},
		Config: examgen.GenerationConfig{
			Title: "Verbs", Language: "portuguese", Difficulty: "b1", Topics: "verbs",
			Types:     examgen.NewTypeSet(examgen.TypeTrueFalse, examgen.TypeMultipleChoice),
			GroupName: &group,
		},
	}
	meta, content := FromResult(res)
	assert.Equal(t, "Verbs", meta.Title)
	assert.Equal(t, []examgen.QuestionType{examgen.TypeMultipleChoice, examgen.TypeTrueFalse}, meta.QuestionTypes)
	assert.Equal(t, &group, meta.GroupName)
	assert.Equal(t, sampleSet(), content.Questions)
	assert.Equal(t, res.AnswerKey, content.AnswerKey)
	assert.Nil(t, content.Versions)
}
