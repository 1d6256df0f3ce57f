package api

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/examforge/examforge/internal/examgen"
)

// questionTypesFlags is the request form of the requested type set.
type questionTypesFlags struct {
	MultipleChoice bool `json:"multipleChoice"`
	FillBlanks     bool `json:"fillBlanks"`
	TrueFalse      bool `json:"trueFalse"`
	OpenQuestions  bool `json:"openQuestions"`
}

type generateRequest struct {
	Title                    string              `json:"title" validate:"required"`
	Language                 string              `json:"language" validate:"required"`
	Difficulty               string              `json:"difficulty" validate:"required"`
	Topics                   string              `json:"topics"`
	QuestionsCount           int                 `json:"questionsCount" validate:"gte=0,lte=50"`
	QuestionTypes            *questionTypesFlags `json:"questionTypes" validate:"required"`
	MaterialTitulo           *string             `json:"materialTitulo,omitempty"`
	MaterialConteudo         *string             `json:"materialConteudo,omitempty"`
	TurmaNome                *string             `json:"turmaNome,omitempty"`
	GenerateMultipleVersions bool                `json:"generateMultipleVersions"`
	VersionsCount            int                 `json:"versionsCount" validate:"gte=0,lte=26"`
	GenerateGabarito         bool                `json:"generateGabarito"`
	VariabilitySeed          *int                `json:"variabilitySeed,omitempty"`
}

type versionResponse struct {
	VersionID   string                   `json:"versionId"`
	VersionName string                   `json:"versionName"`
	Questions   examgen.QuestionSet      `json:"questions"`
	Gabarito    []examgen.AnswerKeyEntry `json:"gabarito,omitempty"`
}

type singleResponse struct {
	Questions   examgen.QuestionSet      `json:"questions"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Config      generateRequest          `json:"config"`
	Gabarito    []examgen.AnswerKeyEntry `json:"gabarito,omitempty"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

type multiResponse struct {
	Versions    []versionResponse `json:"versions"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Config      generateRequest   `json:"config"`
	Warnings    []string          `json:"warnings,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	seed := s.Seed()
	if req.VariabilitySeed != nil {
		seed = *req.VariabilitySeed
	}

	res, err := s.gen.Generate(r.Context(), req.toConfig(), seed)
	if err != nil {
		writeGenerateErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewGenerateResponse(res))
}

func (req generateRequest) toConfig() examgen.GenerationConfig {
	cfg := examgen.GenerationConfig{
		Title:            req.Title,
		Language:         req.Language,
		Difficulty:       req.Difficulty,
		Topics:           req.Topics,
		QuestionCount:    req.QuestionsCount,
		Types:            examgen.TypeSet{},
		GroupName:        nonBlank(req.TurmaNome),
		MultipleVersions: req.GenerateMultipleVersions,
		VersionsCount:    req.VersionsCount,
		AnswerKey:        req.GenerateGabarito,
	}
	if t := req.QuestionTypes; t != nil {
		cfg.Types[examgen.TypeMultipleChoice] = t.MultipleChoice
		cfg.Types[examgen.TypeFillBlanks] = t.FillBlanks
		cfg.Types[examgen.TypeTrueFalse] = t.TrueFalse
		cfg.Types[examgen.TypeOpenQuestions] = t.OpenQuestions
	}
	title, text := nonBlank(req.MaterialTitulo), nonBlank(req.MaterialConteudo)
	if title != nil || text != nil {
		cfg.SourceMaterial = &examgen.SourceMaterial{}
		if title != nil {
			cfg.SourceMaterial.Title = *title
		}
		if text != nil {
			cfg.SourceMaterial.Text = *text
		}
	}
	return cfg
}

// configEcho is the effective config in request form.
func configEcho(cfg examgen.GenerationConfig, seed int) generateRequest {
	req := generateRequest{
		Title:          cfg.Title,
		Language:       cfg.Language,
		Difficulty:     cfg.Difficulty,
		Topics:         cfg.Topics,
		QuestionsCount: cfg.QuestionCount,
		QuestionTypes: &questionTypesFlags{
			MultipleChoice: cfg.Types.Has(examgen.TypeMultipleChoice),
			FillBlanks:     cfg.Types.Has(examgen.TypeFillBlanks),
			TrueFalse:      cfg.Types.Has(examgen.TypeTrueFalse),
			OpenQuestions:  cfg.Types.Has(examgen.TypeOpenQuestions),
		},
		TurmaNome:                cfg.GroupName,
		GenerateMultipleVersions: cfg.MultipleVersions,
		VersionsCount:            cfg.VersionsCount,
		GenerateGabarito:         cfg.AnswerKey,
		VariabilitySeed:          &seed,
	}
	if m := cfg.SourceMaterial; m != nil {
		req.MaterialTitulo = &m.Title
		req.MaterialConteudo = &m.Text
	}
	return req
}

// NewGenerateResponse shapes a generation result the way the generation
// endpoint returns it.
func NewGenerateResponse(res *examgen.Result) any {
	cfg := configEcho(res.Config, res.Seed)
	if !res.Config.MultipleVersions {
		questions := res.Questions
		if questions == nil {
			questions = examgen.QuestionSet{}
		}
		return singleResponse{
			Questions:   questions,
			GeneratedAt: res.GeneratedAt,
			Config:      cfg,
			Gabarito:    res.AnswerKey,
			Warnings:    res.Warnings,
		}
	}

	versions := make([]versionResponse, len(res.Versions))
	for i, v := range res.Versions {
		versions[i] = versionResponse{
			VersionID:   v.Label,
			VersionName: v.Name(),
			Questions:   v.Questions,
			Gabarito:    v.AnswerKey,
		}
	}
	return multiResponse{
		Versions:    versions,
		GeneratedAt: res.GeneratedAt,
		Config:      cfg,
		Warnings:    res.Warnings,
	}
}

func writeGenerateErr(w http.ResponseWriter, err error) {
	var (
		ci *examgen.ErrConfigInvalid
		up *examgen.ErrUpstreamUnavailable
	)
	switch {
	case errors.As(err, &ci):
		writeErr(w, http.StatusBadRequest, "invalid generation config", strings.Join(ci.Fields, ", "))
	case errors.As(err, &up):
		details := up.Error()
		if up.Body != "" {
			details = fmt.Sprintf("%s: %s", details, up.Body)
		}
		writeErr(w, http.StatusInternalServerError, "completion service unavailable", details)
	default:
		writeErr(w, http.StatusInternalServerError, "generation failed", err.Error())
	}
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func randomSeed() int {
	return rand.IntN(1 << 30)
}
