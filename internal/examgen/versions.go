package examgen

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// OpenAnswerPlaceholder is the answer key entry for fillBlanks and
// openQuestions items that carry no expected answer.
const OpenAnswerPlaceholder = "Open answer"

// True/false answer key markers.
const (
	MarkerTrue  = "V"
	MarkerFalse = "F"
)

// NewRand returns a generator seeded from the runtime's entropy source.
// Each request gets its own; *rand.Rand is not safe for concurrent use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Letter encodes a 0-based index as A, B, ..., Z, AA, AB, ...
func Letter(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append(b, byte('A'+(i-1)%26))
	}
	slices.Reverse(b)
	return string(b)
}

// GenerateVersions produces count independently shuffled copies of base.
// Question order and every options list are permuted uniformly; correct
// answers are copied unchanged. base is not modified.
func GenerateVersions(base QuestionSet, count int, withKey bool, rng *rand.Rand) ([]Version, error) {
	if count < 1 {
		return nil, &ErrConfigInvalid{Fields: []string{"versionsCount"}}
	}
	if rng == nil {
		rng = NewRand()
	}

	versions := make([]Version, count)
	for v := range versions {
		qs := base.Clone()
		rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		for i := range qs {
			opts := qs[i].Options
			rng.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
		}

		versions[v] = Version{Label: Letter(v), Questions: qs}
		if withKey {
			key, err := BuildAnswerKey(qs)
			if err != nil {
				return nil, err
			}
			versions[v].AnswerKey = key
		}
	}
	return versions, nil
}

// BuildAnswerKey derives one entry per question in the given order. Every
// multipleChoice and trueFalse question must carry a usable answer.
func BuildAnswerKey(qs QuestionSet) ([]AnswerKeyEntry, error) {
	return buildAnswerKey(qs, AnswerFor)
}

// DraftAnswerKey is BuildAnswerKey for a set still being edited: questions
// with no correct answer yet get a blank entry instead of failing.
func DraftAnswerKey(qs QuestionSet) ([]AnswerKeyEntry, error) {
	return buildAnswerKey(qs, draftAnswerFor)
}

func buildAnswerKey(qs QuestionSet, answer func(Question) (string, error)) ([]AnswerKeyEntry, error) {
	key := make([]AnswerKeyEntry, len(qs))
	for i, q := range qs {
		a, err := answer(q)
		if err != nil {
			return nil, err
		}
		key[i] = AnswerKeyEntry{Question: i + 1, Answer: a}
	}
	return key, nil
}

// AnswerFor returns the answer key text for a single question.
func AnswerFor(q Question) (string, error) {
	switch q.Type {
	case TypeMultipleChoice:
		idx := slices.Index(q.Options, q.CorrectAnswer)
		if q.CorrectAnswer == "" || idx < 0 {
			return "", &ErrAnswerNotFound{QuestionID: q.ID, Answer: q.CorrectAnswer}
		}
		return Letter(idx), nil
	case TypeTrueFalse:
		truth, ok := parseTruth(q.CorrectAnswer)
		if !ok {
			return "", &ErrAnswerNotFound{QuestionID: q.ID, Answer: q.CorrectAnswer}
		}
		if truth {
			return MarkerTrue, nil
		}
		return MarkerFalse, nil
	default:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return OpenAnswerPlaceholder, nil
		}
		return q.CorrectAnswer, nil
	}
}

func draftAnswerFor(q Question) (string, error) {
	switch q.Type {
	case TypeMultipleChoice, TypeTrueFalse:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return "", nil
		}
	}
	return AnswerFor(q)
}
