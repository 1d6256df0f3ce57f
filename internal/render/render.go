// Package render formats activities for the terminal.
package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/examgen"
)

// Options controls what a preview shows.
type Options struct {
	// ShowAnswers marks correct options and prints answer keys.
	ShowAnswers bool
}

// Activity renders a full preview: header, base questions or versions,
// and answer keys when requested.
func Activity(a *activity.Activity, opts Options) string {
	var b strings.Builder
	b.WriteString(header(a.Metadata, string(a.Status), a.ID))
	b.WriteString("\n")
	writeContent(&b, a.Content, opts)
	return b.String()
}

// Result renders a generation result that has not been saved.
func Result(res *examgen.Result, opts Options) string {
	meta, content := activity.FromResult(res)
	var b strings.Builder
	b.WriteString(header(meta, "", ""))
	b.WriteString("\n")
	for _, w := range res.Warnings {
		b.WriteString(warnStyle.Render("warning: "+w) + "\n")
	}
	writeContent(&b, content, opts)
	return b.String()
}

// Questions renders a numbered question list, with key entries inline
// when key is non-nil.
func Questions(qs examgen.QuestionSet, key []examgen.AnswerKeyEntry, opts Options) string {
	var b strings.Builder
	for i, q := range qs {
		text := q.Text
		if strings.TrimSpace(text) == "" {
			text = "(empty question)"
		}
		b.WriteString(questionStyle.Render(fmt.Sprintf("%d. %s", i+1, text)))
		b.WriteString(" " + typeStyle.Render(string(q.Type)) + "\n")
		for j, opt := range q.Options {
			line := fmt.Sprintf("%s) %s", examgen.Letter(j), opt)
			if opts.ShowAnswers && opt == q.CorrectAnswer {
				b.WriteString(correctStyle.Render(line+" ✓") + "\n")
				continue
			}
			b.WriteString(optionStyle.Render(line) + "\n")
		}
		if opts.ShowAnswers && key != nil && i < len(key) {
			b.WriteString(optionStyle.Render(keyStyle.Render("→ "+key[i].Answer)) + "\n")
		}
	}
	return b.String()
}

// AnswerKey renders key entries as "1: A" lines.
func AnswerKey(key []examgen.AnswerKeyEntry) string {
	lines := make([]string, len(key))
	for i, e := range key {
		lines[i] = keyStyle.Render(fmt.Sprintf("%d: %s", e.Question, e.Answer))
	}
	return strings.Join(lines, "\n")
}

// Table renders one line per activity for listings.
func Table(as []*activity.Activity) string {
	if len(as) == 0 {
		return metaStyle.Render("No activities found.")
	}
	rows := make([]string, 0, len(as)+1)
	rows = append(rows, metaStyle.Render(fmt.Sprintf("%-36s  %-10s  %-4s  %-4s  %s", "ID", "Status", "Qs", "Vers", "Title")))
	for _, a := range as {
		rows = append(rows, fmt.Sprintf("%-36s  %s  %-4d  %-4d  %s",
			a.ID,
			status(string(a.Status), 10),
			len(a.Content.Questions),
			len(a.Content.Versions),
			a.Metadata.Title,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func writeContent(b *strings.Builder, c activity.Content, opts Options) {
	if len(c.Versions) == 0 {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Questions (%d)", len(c.Questions))) + "\n")
		b.WriteString(Questions(c.Questions, c.AnswerKey, opts))
		if opts.ShowAnswers && len(c.AnswerKey) > 0 {
			b.WriteString(sectionStyle.Render("Answer key") + "\n")
			b.WriteString(AnswerKey(c.AnswerKey) + "\n")
		}
		return
	}
	for _, v := range c.Versions {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d questions)", v.Name(), len(v.Questions))) + "\n")
		b.WriteString(Questions(v.Questions, v.AnswerKey, opts))
		if opts.ShowAnswers && len(v.AnswerKey) > 0 {
			b.WriteString(sectionStyle.Render(v.Name()+" answer key") + "\n")
			b.WriteString(AnswerKey(v.AnswerKey) + "\n")
		}
	}
}

func header(m activity.Metadata, st, id string) string {
	lines := []string{titleStyle.Render(m.Title)}

	var facts []string
	for _, f := range []struct{ label, value string }{
		{"language", m.Language},
		{"difficulty", m.Difficulty},
		{"topics", m.Topics},
	} {
		if f.value != "" {
			facts = append(facts, f.label+": "+f.value)
		}
	}
	if m.GroupName != nil {
		facts = append(facts, "class: "+*m.GroupName)
	}
	if len(facts) > 0 {
		lines = append(lines, metaStyle.Render(strings.Join(facts, " · ")))
	}
	if m.SourceMaterial != nil && m.SourceMaterial.Title != "" {
		lines = append(lines, metaStyle.Render("material: "+m.SourceMaterial.Title))
	}
	if st != "" {
		lines = append(lines, status(st, 0)+metaStyle.Render("  "+id))
	}
	return headerCard.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func status(s string, width int) string {
	style, ok := statusStyles[s]
	if !ok {
		style = metaStyle
	}
	if width > 0 {
		s = fmt.Sprintf("%-*s", width, s)
	}
	return style.Render(s)
}
