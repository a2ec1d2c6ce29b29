package matching

import (
	"context"
	"fmt"

	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/pkg/models"
)

// RecommendProfiles ranks candidate profiles for one of the recruiter's postings.
func (s *Service) RecommendProfiles(ctx context.Context, p Principal, postingID int64) ([]matcher.Recommendation, error) {
	posting, err := s.store.GetPosting(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("job posting %d: %w", postingID, err)
	}
	if err := s.authorizeCompany(ctx, p, posting.CompanyID); err != nil {
		return nil, err
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return s.ranker.RankProfiles(ctx, posting, profiles, annotator{store: s.store})
}

// RecommendPostings ranks active postings for one of the candidate's profiles.
func (s *Service) RecommendPostings(ctx context.Context, p Principal, profileID int64) ([]matcher.Recommendation, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("job profile %d: %w", profileID, err)
	}
	if p.Role != models.ActorCandidate || profile.CandidateID != p.CandidateID {
		return nil, fmt.Errorf("%w: profile %d belongs to another candidate", ErrForbidden, profileID)
	}

	postings, err := s.store.ListPostings(ctx, PostingFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	return s.ranker.RankPostings(ctx, profile, postings, annotator{store: s.store})
}

// annotator reads ledger and match state for ranked pairs.
type annotator struct {
	store Store
}

func (a annotator) Annotate(ctx context.Context, posting *models.JobPosting, profile *models.JobProfile, actor models.Actor) (matcher.Annotation, error) {
	var ann matcher.Annotation

	swipe, err := a.store.LatestSwipe(ctx, profile.CandidateID, posting.ID, actor)
	if err != nil {
		return ann, err
	}
	if swipe != nil {
		ann.AlreadySwiped = true
		ann.SwipeAction = swipe.Action
	}

	m, err := a.store.FindMatch(ctx, models.MatchKey{
		CandidateID:  profile.CandidateID,
		CompanyID:    posting.CompanyID,
		JobPostingID: posting.ID,
		JobProfileID: profile.ID,
	})
	if err != nil {
		return ann, err
	}
	if m != nil {
		ann.AlreadyMatched = true
		ann.MatchID = m.ID
		ann.IsMutual = m.Mutual()
		ann.RecruiterInterested = m.CompanyLiked
		ann.RecruiterInvited = m.CompanyAskedToApply
	}
	return ann, nil
}
