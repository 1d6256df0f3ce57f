package llm

import "context"

// PurposeExamGeneration labels completions issued by the exam pipeline.
const PurposeExamGeneration = "exam-gen"

type purposeKey struct{}

// WithPurpose labels the calls made with ctx in the request event log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "".
func PurposeFrom(ctx context.Context) string {
	p, _ := ctx.Value(purposeKey{}).(string)
	return p
}
