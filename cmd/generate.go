package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/api"
	"github.com/examforge/examforge/internal/examgen"
	"github.com/examforge/examforge/internal/llm"
	"github.com/examforge/examforge/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a question set (and optional versions) from flags",
	Long: `Run the generation pipeline once and print the result.

With --versions N (N > 1) the base set is shuffled locally into N versions.
Nothing is stored unless --save is given.`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("title", "", "Activity title (required)")
	f.String("language", "", "Language of the questions (required)")
	f.String("difficulty", "", "Difficulty level, e.g. b1 (required)")
	f.String("topics", "", "Topics to cover")
	f.IntP("count", "n", examgen.DefaultQuestionCount, "Number of questions")
	f.StringSlice("types", []string{string(examgen.TypeMultipleChoice)}, "Question types: multipleChoice, fillBlanks, trueFalse, openQuestions")
	f.String("material-title", "", "Source material title")
	f.String("material-file", "", "File holding source material text")
	f.String("group", "", "Class or group name")
	f.Int("versions", 1, "Number of shuffled versions; 1 keeps the base set")
	f.Bool("answer-key", false, "Derive answer keys")
	f.Int("seed", -1, "Variability seed; negative picks one at random")
	f.Bool("save", false, "Store the result as a draft activity")
	f.String("owner", "", "Owner id for the saved activity")
	f.Bool("json", false, "Print the generation endpoint's JSON response")
	f.Bool("answers", true, "Show answers in the preview")
	_ = c.MarkFlagRequired("title")
	_ = c.MarkFlagRequired("language")
	_ = c.MarkFlagRequired("difficulty")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gc, err := generationConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	seed, _ := f.GetInt("seed")
	if seed < 0 {
		seed = rand.IntN(1 << 30)
	}
	save, _ := f.GetBool("save")
	asJSON, _ := f.GetBool("json")

	ctx := cmd.Context()
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	provider, err := llm.NewProvider(ctx, cfg.LLM, s.EventRepo())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	res, err := examgen.NewGenerator(provider, cfg.Generator()).Generate(ctx, gc, seed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(api.NewGenerateResponse(res)); err != nil {
			return err
		}
	} else {
		answers, _ := f.GetBool("answers")
		lipgloss.Fprintln(out, render.Result(res, render.Options{ShowAnswers: answers}))
	}

	if save {
		owner, _ := f.GetString("owner")
		meta, content := activity.FromResult(res)
		a, err := activity.NewService(s.ActivityRepo()).Create(ctx, owner, meta, content)
		if err != nil {
			return fmt.Errorf("save activity: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved activity %s\n", a.ID)
	}
	return nil
}

func generationConfigFromFlags(cmd *cobra.Command) (examgen.GenerationConfig, error) {
	f := cmd.Flags()
	title, _ := f.GetString("title")
	language, _ := f.GetString("language")
	difficulty, _ := f.GetString("difficulty")
	topics, _ := f.GetString("topics")
	count, _ := f.GetInt("count")
	rawTypes, _ := f.GetStringSlice("types")
	versions, _ := f.GetInt("versions")
	answerKey, _ := f.GetBool("answer-key")

	types, err := parseTypes(rawTypes)
	if err != nil {
		return examgen.GenerationConfig{}, err
	}

	gc := examgen.GenerationConfig{
		Title:            title,
		Language:         language,
		Difficulty:       difficulty,
		Topics:           topics,
		QuestionCount:    count,
		Types:            types,
		MultipleVersions: versions > 1,
		VersionsCount:    versions,
		AnswerKey:        answerKey,
	}
	if g, _ := f.GetString("group"); strings.TrimSpace(g) != "" {
		gc.GroupName = &g
	}

	materialTitle, _ := f.GetString("material-title")
	materialFile, _ := f.GetString("material-file")
	if materialTitle != "" || materialFile != "" {
		gc.SourceMaterial = &examgen.SourceMaterial{Title: materialTitle}
		if materialFile != "" {
			text, err := os.ReadFile(materialFile)
			if err != nil {
				return examgen.GenerationConfig{}, fmt.Errorf("read material: %w", err)
			}
			gc.SourceMaterial.Text = string(text)
		}
	}
	return gc, nil
}

// parseTypes accepts canonical type names case-insensitively.
func parseTypes(raw []string) (examgen.TypeSet, error) {
	set := examgen.TypeSet{}
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		matched := false
		for _, t := range examgen.AllTypes {
			if strings.EqualFold(r, string(t)) {
				set[t] = true
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown question type %q", r)
		}
	}
	return set, nil
}
