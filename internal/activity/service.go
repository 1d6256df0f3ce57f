package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/examforge/examforge/internal/examgen"
	"github.com/examforge/examforge/internal/store"
)

// Service persists activities and applies edits to stored ones. An empty
// owner id disables owner scoping.
type Service struct {
	repo store.ActivityRepo

	// NewRand is replaceable for tests.
	NewRand func() *rand.Rand
}

// NewService creates a Service over repo.
func NewService(repo store.ActivityRepo) *Service {
	return &Service{repo: repo, NewRand: examgen.NewRand}
}

// ListOptions narrows and ranks activity listings. When Query is set,
// activities whose title or topics do not fuzzily match are dropped and the
// rest are ordered by match distance.
type ListOptions struct {
	OwnerID string
	Status  Status
	Query   string
	Limit   int
	Offset  int
}

// Update replaces metadata and status. Nil fields are left unchanged.
type Update struct {
	Metadata *Metadata
	Status   *Status
}

// Create assembles and persists a new activity.
func (s *Service) Create(ctx context.Context, ownerID string, meta Metadata, content Content) (*Activity, error) {
	a, err := Assemble(meta, content)
	if err != nil {
		return nil, err
	}
	a.OwnerID = ownerID

	rec, err := toRecord(a)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "activity created", "id", a.ID, "questions", len(a.Content.Questions), "versions", len(a.Content.Versions))
	return a, nil
}

// Get returns the activity id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Activity, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ownerID != "" && rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return fromRecord(rec)
}

// List returns activities, most recently updated first unless a query
// ranks them.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Activity, error) {
	filter := store.ActivityFilter{OwnerID: opts.OwnerID, Status: string(opts.Status)}
	if opts.Query == "" {
		filter.Limit = opts.Limit
		filter.Offset = opts.Offset
	}
	recs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*Activity, 0, len(recs))
	for i := range recs {
		a, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if opts.Query == "" {
		return out, nil
	}
	return page(rank(opts.Query, out), opts.Offset, opts.Limit), nil
}

// Replace applies u to the activity id.
func (s *Service) Replace(ctx context.Context, ownerID, id string, u Update) (*Activity, error) {
	return s.Edit(ctx, ownerID, id, func(a *Activity) error {
		if u.Metadata != nil {
			meta := normalizeMetadata(*u.Metadata)
			if err := validateMetadata(meta); err != nil {
				return err
			}
			a.Metadata = meta
		}
		if u.Status != nil {
			if !u.Status.Valid() {
				return &ErrInvalid{Fields: []string{"status"}}
			}
			a.Status = *u.Status
		}
		a.touch()
		return nil
	})
}

// Delete removes the activity id.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	slog.InfoContext(ctx, "activity deleted", "id", id)
	return nil
}

// Edit loads the activity id, applies fn and saves the result. Nothing is
// saved when fn fails.
func (s *Service) Edit(ctx context.Context, ownerID, id string, fn func(*Activity) error) (*Activity, error) {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}

	rec, err := toRecord(a)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.UpdatedAt = rec.UpdatedAt
	return a, nil
}

// RegenerateVersions replaces the stored versions with count fresh
// shuffles of the base set.
func (s *Service) RegenerateVersions(ctx context.Context, ownerID, id string, count int, withKey bool) (*Activity, error) {
	return s.Edit(ctx, ownerID, id, func(a *Activity) error {
		return a.RegenerateVersions(count, withKey, s.NewRand())
	})
}

func toRecord(a *Activity) (*store.ActivityRecord, error) {
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal activity metadata: %w", err)
	}
	content, err := json.Marshal(a.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal activity content: %w", err)
	}
	return &store.ActivityRecord{
		ID:         a.ID,
		OwnerID:    a.OwnerID,
		Title:      a.Metadata.Title,
		Status:     string(a.Status),
		Language:   a.Metadata.Language,
		Difficulty: a.Metadata.Difficulty,
		Topics:     a.Metadata.Topics,
		Metadata:   meta,
		Content:    content,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}, nil
}

func fromRecord(rec *store.ActivityRecord) (*Activity, error) {
	a := &Activity{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Status:    Status(rec.Status),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if len(rec.Metadata) > 0 {
		if err := json.Unmarshal(rec.Metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("decode activity %s metadata: %w", rec.ID, err)
		}
	}
	if len(rec.Content) > 0 {
		if err := json.Unmarshal(rec.Content, &a.Content); err != nil {
			return nil, fmt.Errorf("decode activity %s content: %w", rec.ID, err)
		}
	}
	return a, nil
}

type ranked struct {
	activity *Activity
	distance int
}

func rank(query string, as []*Activity) []*Activity {
	var hits []ranked
	for _, a := range as {
		best := -1
		for _, target := range []string{a.Metadata.Title, a.Metadata.Topics} {
			d := fuzzy.RankMatchNormalizedFold(query, target)
			if d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		if best >= 0 {
			hits = append(hits, ranked{activity: a, distance: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	return lo.Map(hits, func(r ranked, _ int) *Activity { return r.activity })
}

func page(as []*Activity, offset, limit int) []*Activity {
	if offset >= len(as) {
		return []*Activity{}
	}
	as = as[max(offset, 0):]
	if limit > 0 && limit < len(as) {
		as = as[:limit]
	}
	return as
}
