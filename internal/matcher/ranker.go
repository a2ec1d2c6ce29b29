package matcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/khrees2412/talentmatch/pkg/models"
	"golang.org/x/sync/errgroup"
)

// DefaultMinScore is the inclusive threshold below which results are dropped.
const DefaultMinScore = 40

// Annotation describes prior interaction between the two sides of a pair.
type Annotation struct {
	AlreadySwiped       bool          `json:"already_swiped"`
	SwipeAction         models.Action `json:"swipe_action,omitempty"`
	AlreadyMatched      bool          `json:"already_matched"`
	IsMutual            bool          `json:"is_mutual"`
	RecruiterInterested bool          `json:"recruiter_interested"`
	RecruiterInvited    bool          `json:"recruiter_invited"`
	MatchID             int64         `json:"match_id,omitempty"`
}

// Annotator looks up ledger and match state for a pair. It never affects the score.
type Annotator interface {
	Annotate(ctx context.Context, posting *models.JobPosting, profile *models.JobProfile, actor models.Actor) (Annotation, error)
}

// Recommendation is one ranked pair.
type Recommendation struct {
	Posting   *models.JobPosting `json:"posting"`
	Profile   *models.JobProfile `json:"profile"`
	Score     int                `json:"score"`
	Breakdown Breakdown          `json:"breakdown"`
	Annotation
}

// Ranker scores pairs concurrently and orders them.
type Ranker struct {
	MinScore int
	Workers  int
	// Limit truncates the result after deduplication; zero keeps everything.
	Limit int
}

// NewRanker returns a Ranker with the given threshold and worker count.
func NewRanker(minScore, workers int) *Ranker {
	if workers <= 0 {
		workers = 4
	}
	return &Ranker{MinScore: minScore, Workers: workers}
}

// RankProfiles ranks candidate profiles for a posting, keeping each
// candidate's best-scoring profile only.
func (r *Ranker) RankProfiles(ctx context.Context, posting *models.JobPosting, profiles []models.JobProfile, ann Annotator) ([]Recommendation, error) {
	recs := make([]Recommendation, len(profiles))
	for i := range profiles {
		recs[i] = Recommendation{Posting: posting, Profile: &profiles[i]}
	}
	if err := r.scoreAll(ctx, recs, RecruiterView); err != nil {
		return nil, err
	}
	recs = r.order(recs, func(rec Recommendation) int64 { return rec.Profile.CandidateID })
	return r.annotate(ctx, recs, ann, models.ActorRecruiter)
}

// RankPostings ranks postings for a candidate profile.
func (r *Ranker) RankPostings(ctx context.Context, profile *models.JobProfile, postings []models.JobPosting, ann Annotator) ([]Recommendation, error) {
	recs := make([]Recommendation, len(postings))
	for i := range postings {
		recs[i] = Recommendation{Posting: &postings[i], Profile: profile}
	}
	if err := r.scoreAll(ctx, recs, CandidateView); err != nil {
		return nil, err
	}
	recs = r.order(recs, func(rec Recommendation) int64 { return rec.Posting.ID })
	return r.annotate(ctx, recs, ann, models.ActorCandidate)
}

// scoreAll fills in scores in place; each worker writes only its own slot.
func (r *Ranker) scoreAll(ctx context.Context, recs []Recommendation, view View) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i := range recs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := Score(recs[i].Posting, recs[i].Profile, view)
			recs[i].Score = res.Total
			recs[i].Breakdown = res.Breakdown
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("score pairs: %w", err)
	}
	return nil
}

// order filters by threshold, sorts by score descending and keeps the
// first entry per identity. Stable sorting makes ties resolve to input order.
func (r *Ranker) order(recs []Recommendation, identity func(Recommendation) int64) []Recommendation {
	kept := recs[:0]
	for _, rec := range recs {
		if rec.Score >= r.MinScore {
			kept = append(kept, rec)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	seen := make(map[int64]bool, len(kept))
	out := make([]Recommendation, 0, len(kept))
	for _, rec := range kept {
		id := identity(rec)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, rec)
		if r.Limit > 0 && len(out) == r.Limit {
			break
		}
	}
	return out
}

func (r *Ranker) annotate(ctx context.Context, recs []Recommendation, ann Annotator, actor models.Actor) ([]Recommendation, error) {
	if ann == nil {
		return recs, nil
	}
	for i := range recs {
		a, err := ann.Annotate(ctx, recs[i].Posting, recs[i].Profile, actor)
		if err != nil {
			return nil, fmt.Errorf("annotate posting %d profile %d: %w", recs[i].Posting.ID, recs[i].Profile.ID, err)
		}
		recs[i].Annotation = a
	}
	return recs, nil
}
