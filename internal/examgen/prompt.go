package examgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced teacher who writes exam questions.

Rules:
- Answer with a single JSON object and nothing else. No commentary before or after it.
- Write every question, option and answer in the requested language.
- Questions must be self-contained, unambiguous and match the requested difficulty.
- Never repeat a question within the same set.`

// variabilityBank holds the phrases rotated into prompts to reduce
// repetition between otherwise identical requests.
var variabilityBank = []string{
	"Favor questions that apply the concepts to concrete, everyday situations.",
	"Mix recall questions with questions that require reasoning about cause and effect.",
	"Approach the topics from an angle a student would not expect, while staying on topic.",
	"Prefer questions that compare or contrast related ideas.",
	"Include questions that ask the student to interpret a short example or scenario.",
	"Vary sentence structure and vocabulary across the questions.",
}

// typeInstructions describes how each question type must be shaped.
var typeInstructions = map[QuestionType]string{
	TypeMultipleChoice: `"multipleChoice": provide 4 distinct strings in "options"; "correctAnswer" must repeat the exact text of the correct option`,
	TypeFillBlanks:     `"fillBlanks": a sentence with one or more blanks written as ___; "correctAnswer" holds the missing text`,
	TypeTrueFalse:      `"trueFalse": a statement to judge; "correctAnswer" is "true" or "false"`,
	TypeOpenQuestions:  `"openQuestions": an open-ended prompt; "correctAnswer" holds a short expected answer or grading note`,
}

// VariabilityPhrase returns the phrase selected by seed. Negative seeds
// wrap around like positive ones.
func VariabilityPhrase(seed int) string {
	n := len(variabilityBank)
	return variabilityBank[((seed%n)+n)%n]
}

// BuildPrompt renders the user prompt for cfg. It has no side effects.
func BuildPrompt(cfg GenerationConfig, seed int) string {
	types := cfg.Types.List()
	var b strings.Builder

	fmt.Fprintf(&b, "Create an exam titled %q.\n", cfg.Title)
	fmt.Fprintf(&b, "Language: %s\n", cfg.Language)
	fmt.Fprintf(&b, "Difficulty: %s\n", cfg.Difficulty)
	if topics := strings.TrimSpace(cfg.Topics); topics != "" {
		fmt.Fprintf(&b, "Topics: %s\n", topics)
	}
	if cfg.GroupName != nil && strings.TrimSpace(*cfg.GroupName) != "" {
		fmt.Fprintf(&b, "Class: %s\n", *cfg.GroupName)
	}

	fmt.Fprintf(&b, "\nGenerate exactly %d questions.\n", cfg.QuestionCount)
	b.WriteString("Use only these question types:\n")
	for _, t := range types {
		instr, ok := typeInstructions[t]
		if !ok {
			instr = fmt.Sprintf("%q", t)
		}
		fmt.Fprintf(&b, "- %s\n", instr)
	}

	fmt.Fprintf(&b, "\n%s\n", VariabilityPhrase(seed))

	if sm := cfg.SourceMaterial; sm != nil {
		b.WriteString("\nBase the questions on the following source material.\n")
		if sm.Title != "" {
			fmt.Fprintf(&b, "Material title: %s\n", sm.Title)
		}
		if sm.Text != "" {
			fmt.Fprintf(&b, "Material content:\n%s\n", sm.Text)
		}
	}

	if cfg.MultipleVersions {
		b.WriteString("\nThis exam will be printed in several versions. Produce ONE base set of questions only. ")
		b.WriteString("Do not create separate versions, do not number options with letters, and keep each option self-contained ")
		b.WriteString("because question and option order will be shuffled afterwards.\n")
	}

	b.WriteString("\nRespond with JSON in this format:\n")
	b.WriteString(`{"questions":[{"type":"<type>","question":"<text>","options":["..."],"correctAnswer":"<answer>"}]}`)
	b.WriteString("\nOmit \"options\" for every type except multipleChoice.\n")

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}
	fmt.Fprintf(&b, "\nVALIDATION: the \"questions\" list must contain exactly %d items, and every \"type\" must be one of: %s. Any other type is invalid.\n",
		cfg.QuestionCount, strings.Join(typeNames, ", "))

	return b.String()
}
