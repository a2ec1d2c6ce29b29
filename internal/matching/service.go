package matching

import (
	"context"
	"fmt"
	"slices"

	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/internal/notify"
	"github.com/khrees2412/talentmatch/pkg/models"
	"go.uber.org/zap"
)

// Principal is the caller, as resolved by the identity layer.
type Principal struct {
	UserID      int64
	Role        models.Actor
	CandidateID int64
	CompanyID   int64
}

// SwipeRequest is one swipe from the principal. CandidateID is only read
// for recruiter swipes and must agree with the profile when set.
type SwipeRequest struct {
	CandidateID  int64         `json:"candidate_id"`
	JobProfileID int64         `json:"job_profile_id"`
	JobPostingID int64         `json:"job_posting_id"`
	Action       models.Action `json:"action"`
}

// SwipeResult reports what a swipe changed.
type SwipeResult struct {
	Created       bool              `json:"created"`
	Match         *models.Match     `json:"match,omitempty"`
	State         models.MatchState `json:"state"`
	Notifications int               `json:"notifications"`
}

// Service records swipes, maintains matches and ranks recommendations.
type Service struct {
	store    Store
	notifier notify.Dispatcher
	ranker   *matcher.Ranker
	logger   *zap.Logger
}

// NewService wires a Service. A nil logger disables logging.
func NewService(store Store, notifier notify.Dispatcher, ranker *matcher.Ranker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ranker == nil {
		ranker = matcher.NewRanker(matcher.DefaultMinScore, 0)
	}
	return &Service{store: store, notifier: notifier, ranker: ranker, logger: logger}
}

// RecordSwipe appends a swipe to the ledger and applies it to the match.
// A repeated like from the same side returns Created=false and changes nothing.
func (s *Service) RecordSwipe(ctx context.Context, p Principal, req SwipeRequest) (*SwipeResult, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, req.Action)
	}
	if !p.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown actor %q", ErrInvalidArgument, p.Role)
	}

	posting, err := s.store.GetPosting(ctx, req.JobPostingID)
	if err != nil {
		return nil, fmt.Errorf("job posting %d: %w", req.JobPostingID, err)
	}
	profile, err := s.store.GetProfile(ctx, req.JobProfileID)
	if err != nil {
		return nil, fmt.Errorf("job profile %d: %w", req.JobProfileID, err)
	}

	switch p.Role {
	case models.ActorCandidate:
		if profile.CandidateID != p.CandidateID {
			return nil, fmt.Errorf("%w: profile %d belongs to another candidate", ErrForbidden, profile.ID)
		}
	case models.ActorRecruiter:
		if err := s.authorizeCompany(ctx, p, posting.CompanyID); err != nil {
			return nil, err
		}
		if req.CandidateID != 0 && req.CandidateID != profile.CandidateID {
			return nil, fmt.Errorf("job profile %d for candidate %d: %w", profile.ID, req.CandidateID, ErrNotFound)
		}
	}

	swipe := &models.Swipe{
		CandidateID:  profile.CandidateID,
		CompanyID:    posting.CompanyID,
		JobProfileID: profile.ID,
		JobPostingID: posting.ID,
		Action:       req.Action,
		Actor:        p.Role,
	}

	rec, err := s.store.ApplySwipe(ctx, swipe, Placeholder(req.Action), func(existing *models.Match) (models.MatchFlags, bool) {
		out := Transition(flagsOf(existing), existing != nil, req.Action, p.Role)
		return out.After, out.Write
	})
	if err != nil {
		return nil, fmt.Errorf("apply swipe: %w", err)
	}

	res := &SwipeResult{Created: rec.Created, Match: rec.After, State: rec.After.State()}
	if !rec.Created {
		s.logger.Debug("duplicate like ignored",
			zap.Int64("candidate_id", swipe.CandidateID),
			zap.Int64("job_posting_id", swipe.JobPostingID),
			zap.String("actor", string(swipe.Actor)),
		)
		return res, nil
	}

	out := Transition(flagsOf(rec.Before), rec.Before != nil, req.Action, p.Role)
	res.Notifications = s.dispatch(ctx, out.Events, posting, profile)

	s.logger.Info("swipe recorded",
		zap.Int64("candidate_id", swipe.CandidateID),
		zap.Int64("company_id", swipe.CompanyID),
		zap.Int64("job_posting_id", swipe.JobPostingID),
		zap.Int64("job_profile_id", swipe.JobProfileID),
		zap.String("action", string(swipe.Action)),
		zap.String("actor", string(swipe.Actor)),
		zap.String("state", string(res.State)),
	)
	return res, nil
}

// Unlike clears the caller's liked flag on a match. It writes no swipe and
// sends no notification.
func (s *Service) Unlike(ctx context.Context, p Principal, matchID int64) (*models.Match, error) {
	if err := s.authorizeMatch(ctx, p, matchID); err != nil {
		return nil, err
	}
	_, after, err := s.store.UpdateMatch(ctx, matchID, func(existing *models.Match) (models.MatchFlags, bool) {
		out := Retract(flagsOf(existing), p.Role)
		return out.After, out.Write
	})
	if err != nil {
		return nil, fmt.Errorf("unlike match %d: %w", matchID, err)
	}
	s.logger.Info("match unliked", zap.Int64("match_id", matchID), zap.String("actor", string(p.Role)))
	return after, nil
}

// ActOnMatch applies like or ask_to_apply to an existing match without a
// ledger entry. Only recruiters may ask to apply this way.
func (s *Service) ActOnMatch(ctx context.Context, p Principal, matchID int64, action models.Action) (*SwipeResult, error) {
	switch {
	case action == models.ActionLike:
	case action == models.ActionAskToApply && p.Role == models.ActorRecruiter:
	default:
		return nil, fmt.Errorf("%w: %s cannot %s a match", ErrInvalidArgument, p.Role, action)
	}
	if err := s.authorizeMatch(ctx, p, matchID); err != nil {
		return nil, err
	}

	before, after, err := s.store.UpdateMatch(ctx, matchID, func(existing *models.Match) (models.MatchFlags, bool) {
		out := Transition(flagsOf(existing), true, action, p.Role)
		return out.After, out.After != flagsOf(existing)
	})
	if err != nil {
		return nil, fmt.Errorf("%s match %d: %w", action, matchID, err)
	}

	res := &SwipeResult{Created: true, Match: after, State: after.State()}
	out := Transition(flagsOf(before), true, action, p.Role)
	if len(out.Events) == 0 {
		return res, nil
	}

	posting, err := s.store.GetPosting(ctx, after.JobPostingID)
	if err != nil {
		return nil, fmt.Errorf("job posting %d: %w", after.JobPostingID, err)
	}
	profile, err := s.store.GetProfile(ctx, after.JobProfileID)
	if err != nil {
		return nil, fmt.Errorf("job profile %d: %w", after.JobProfileID, err)
	}
	res.Notifications = s.dispatch(ctx, out.Events, posting, profile)
	return res, nil
}

// ListMatches returns the principal's matches, newest first.
func (s *Service) ListMatches(ctx context.Context, p Principal, mutualOnly bool) ([]models.Match, error) {
	filter := MatchFilter{MutualOnly: mutualOnly}
	switch p.Role {
	case models.ActorCandidate:
		filter.CandidateID = p.CandidateID
	case models.ActorRecruiter:
		ids, err := s.store.TeamCompanyIDs(ctx, p.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("team companies: %w", err)
		}
		filter.CompanyIDs = ids
	default:
		return nil, fmt.Errorf("%w: unknown actor %q", ErrInvalidArgument, p.Role)
	}
	return s.store.ListMatches(ctx, filter)
}

// PostingStats summarises interest in the recruiter's postings.
func (s *Service) PostingStats(ctx context.Context, p Principal) ([]models.PostingStats, error) {
	if p.Role != models.ActorRecruiter {
		return nil, fmt.Errorf("%w: only recruiters have posting stats", ErrForbidden)
	}
	ids, err := s.store.TeamCompanyIDs(ctx, p.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("team companies: %w", err)
	}
	return s.store.PostingStats(ctx, ids)
}

// ScorePair scores one posting against one profile.
func (s *Service) ScorePair(ctx context.Context, postingID, profileID int64, view matcher.View) (*matcher.Result, error) {
	posting, err := s.store.GetPosting(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("job posting %d: %w", postingID, err)
	}
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("job profile %d: %w", profileID, err)
	}
	res := matcher.Score(posting, profile, view)
	return &res, nil
}

// authorizeCompany checks the principal's team owns companyID.
func (s *Service) authorizeCompany(ctx context.Context, p Principal, companyID int64) error {
	if p.Role != models.ActorRecruiter {
		return fmt.Errorf("%w: recruiter access required", ErrForbidden)
	}
	ids, err := s.store.TeamCompanyIDs(ctx, p.CompanyID)
	if err != nil {
		return fmt.Errorf("team companies: %w", err)
	}
	if !slices.Contains(ids, companyID) {
		return fmt.Errorf("%w: company %d is outside the caller's team", ErrForbidden, companyID)
	}
	return nil
}

// authorizeMatch checks the principal is a party to the match.
func (s *Service) authorizeMatch(ctx context.Context, p Principal, matchID int64) error {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("match %d: %w", matchID, err)
	}
	switch p.Role {
	case models.ActorCandidate:
		if m.CandidateID != p.CandidateID {
			return fmt.Errorf("%w: match %d belongs to another candidate", ErrForbidden, matchID)
		}
		return nil
	case models.ActorRecruiter:
		return s.authorizeCompany(ctx, p, m.CompanyID)
	}
	return fmt.Errorf("%w: unknown actor %q", ErrInvalidArgument, p.Role)
}

// dispatch sends events and returns how many were delivered. Failures are logged.
func (s *Service) dispatch(ctx context.Context, events []Event, posting *models.JobPosting, profile *models.JobProfile) int {
	if len(events) == 0 || s.notifier == nil {
		return 0
	}

	payload := notify.Payload{
		JobPostingID:   posting.ID,
		JobTitle:       posting.JobTitle,
		CandidateID:    profile.CandidateID,
		JobProfileID:   profile.ID,
		JobProfileName: profile.ProfileName,
	}

	var candidateUser, companyUser int64
	if c, err := s.store.GetCandidate(ctx, profile.CandidateID); err != nil {
		s.logger.Warn("candidate lookup failed", zap.Int64("candidate_id", profile.CandidateID), zap.Error(err))
	} else {
		candidateUser = c.UserID
		payload.CandidateName = c.Name
	}
	if c, err := s.store.GetCompany(ctx, posting.CompanyID); err != nil {
		s.logger.Warn("company lookup failed", zap.Int64("company_id", posting.CompanyID), zap.Error(err))
	} else {
		companyUser = c.UserID
	}

	sent := 0
	for _, ev := range events {
		userID := candidateUser
		if ev.To == SideCompany {
			userID = companyUser
		}
		if userID == 0 {
			continue
		}
		if err := s.notifier.Notify(ctx, userID, ev.Kind, payload); err != nil {
			s.logger.Warn("notify failed",
				zap.String("kind", string(ev.Kind)),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent
}

func flagsOf(m *models.Match) models.MatchFlags {
	if m == nil {
		return models.MatchFlags{}
	}
	return m.MatchFlags
}
