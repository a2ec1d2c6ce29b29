package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/khrees2412/talentmatch/internal/matcher"
	"go.uber.org/zap"
)

// RescoreMatches replaces placeholder percentages with real scores for up
// to limit matches. A match whose posting or profile is gone is skipped.
func (s *Service) RescoreMatches(ctx context.Context, limit int) (int, error) {
	matches, err := s.store.ListUnscoredMatches(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unscored matches: %w", err)
	}

	updated := 0
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		res, err := s.ScorePair(ctx, m.JobPostingID, m.JobProfileID, matcher.RecruiterView)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("rescore skipped", zap.Int64("match_id", m.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return updated, err
		}
		if err := s.store.SetMatchScore(ctx, m.ID, float64(res.Total)); err != nil {
			return updated, fmt.Errorf("set score for match %d: %w", m.ID, err)
		}
		updated++
	}
	return updated, nil
}
