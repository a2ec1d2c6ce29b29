package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
)

const matchColumns = `id, candidate_id, company_id, job_posting_id, job_profile_id,
	candidate_liked, company_liked, candidate_asked_to_apply, company_asked_to_apply,
	match_percentage, scored, created_at, updated_at`

// ApplySwipe appends the swipe and applies mutate to its locked match row.
// A repeated like is dropped by idx_swipes_like_once.
func (s *Store) ApplySwipe(ctx context.Context, swipe *models.Swipe, placeholder float64, mutate matching.Mutation) (*matching.SwipeRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	key := models.MatchKey{
		CandidateID:  swipe.CandidateID,
		CompanyID:    swipe.CompanyID,
		JobPostingID: swipe.JobPostingID,
		JobProfileID: swipe.JobProfileID,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO swipes (candidate_id, company_id, job_profile_id, job_posting_id, action, actor)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING
		 RETURNING id, created_at`,
		swipe.CandidateID, swipe.CompanyID, swipe.JobProfileID, swipe.JobPostingID,
		swipe.Action, swipe.Actor).Scan(&swipe.ID, &swipe.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		m, err := findMatch(ctx, tx, key, false)
		if err != nil {
			return nil, err
		}
		return &matching.SwipeRecord{Created: false, Before: m, After: m}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert swipe: %w", err)
	}

	before, after, err := upsertMatch(ctx, tx, key, placeholder, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &matching.SwipeRecord{Created: true, Before: before, After: after}, nil
}

func upsertMatch(ctx context.Context, tx pgx.Tx, key models.MatchKey, placeholder float64, mutate matching.Mutation) (before, after *models.Match, err error) {
	before, err = findMatch(ctx, tx, key, true)
	if err != nil {
		return nil, nil, err
	}

	if before == nil {
		if _, write := mutate(nil); !write {
			return nil, nil, nil
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO matches (candidate_id, company_id, job_posting_id, job_profile_id, match_percentage)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (candidate_id, company_id, job_posting_id, job_profile_id) DO NOTHING`,
			key.CandidateID, key.CompanyID, key.JobPostingID, key.JobProfileID, placeholder)
		if err != nil {
			return nil, nil, fmt.Errorf("insert match: %w", err)
		}
		row, err := findMatch(ctx, tx, key, true)
		if err != nil {
			return nil, nil, err
		}
		if tag.RowsAffected() == 0 {
			before = row
		}
		after = row
	} else {
		after = before
	}

	flags, write := mutate(before)
	if !write {
		return before, after, nil
	}
	after, err = writeFlags(ctx, tx, after.ID, flags)
	return before, after, err
}

func writeFlags(ctx context.Context, q db, id int64, f models.MatchFlags) (*models.Match, error) {
	var m models.Match
	err := pgxscan.Get(ctx, q, &m,
		`UPDATE matches SET candidate_liked = $1, company_liked = $2, candidate_asked_to_apply = $3,
		 company_asked_to_apply = $4, updated_at = NOW() WHERE id = $5
		 RETURNING `+matchColumns,
		f.CandidateLiked, f.CompanyLiked, f.CandidateAskedToApply, f.CompanyAskedToApply, id)
	if err != nil {
		return nil, fmt.Errorf("update match %d: %w", id, notFound(err))
	}
	return &m, nil
}

// UpdateMatch applies mutate to an existing match under a row lock.
func (s *Store) UpdateMatch(ctx context.Context, matchID int64, mutate matching.Mutation) (*models.Match, *models.Match, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var before models.Match
	if err := pgxscan.Get(ctx, tx, &before,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, matchID); err != nil {
		return nil, nil, notFound(err)
	}

	flags, write := mutate(&before)
	if !write {
		return &before, &before, nil
	}
	after, err := writeFlags(ctx, tx, matchID, flags)
	if err != nil {
		return nil, nil, err
	}
	return &before, after, tx.Commit(ctx)
}

// findMatch returns nil, nil when the key has no match.
func findMatch(ctx context.Context, q db, key models.MatchKey, forUpdate bool) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE candidate_id = $1 AND company_id = $2 AND job_posting_id = $3 AND job_profile_id = $4`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var m models.Match
	err := pgxscan.Get(ctx, q, &m, query, key.CandidateID, key.CompanyID, key.JobPostingID, key.JobProfileID)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	var m models.Match
	if err := pgxscan.Get(ctx, s.pool, &m, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *Store) FindMatch(ctx context.Context, key models.MatchKey) (*models.Match, error) {
	return findMatch(ctx, s.pool, key, false)
}

// LatestSwipe returns the newest swipe by actor on a pair, or nil.
func (s *Store) LatestSwipe(ctx context.Context, candidateID, postingID int64, actor models.Actor) (*models.Swipe, error) {
	var sw models.Swipe
	err := pgxscan.Get(ctx, s.pool, &sw,
		`SELECT id, candidate_id, company_id, job_profile_id, job_posting_id, action, actor, created_at
		 FROM swipes WHERE candidate_id = $1 AND job_posting_id = $2 AND actor = $3
		 ORDER BY id DESC LIMIT 1`, candidateID, postingID, actor)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sw, nil
}

// CountSwipes counts ledger rows for a pair and actor.
func (s *Store) CountSwipes(ctx context.Context, candidateID, postingID int64, actor models.Actor) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM swipes WHERE candidate_id = $1 AND job_posting_id = $2 AND actor = $3`,
		candidateID, postingID, actor).Scan(&n)
	return n, err
}

func (s *Store) ListMatches(ctx context.Context, filter matching.MatchFilter) ([]models.Match, error) {
	var (
		where []string
		args  []any
	)
	if filter.CandidateID != 0 {
		args = append(args, filter.CandidateID)
		where = append(where, fmt.Sprintf("candidate_id = $%d", len(args)))
	}
	if len(filter.CompanyIDs) > 0 {
		where = append(where, "company_id IN ("+inClause(len(args)+1, len(filter.CompanyIDs))+")")
		args = append(args, int64Args(filter.CompanyIDs)...)
	}
	if filter.MutualOnly {
		where = append(where, "candidate_liked AND company_liked")
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id DESC"

	matches := []models.Match{}
	if err := pgxscan.Select(ctx, s.pool, &matches, query, args...); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *Store) ListUnscoredMatches(ctx context.Context, limit int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE NOT scored ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	matches := []models.Match{}
	if err := pgxscan.Select(ctx, s.pool, &matches, query, args...); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *Store) SetMatchScore(ctx context.Context, matchID int64, percentage float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET match_percentage = $1, scored = TRUE, updated_at = NOW() WHERE id = $2`,
		percentage, matchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return matching.ErrNotFound
	}
	return nil
}

func (s *Store) PostingStats(ctx context.Context, companyIDs []int64) ([]models.PostingStats, error) {
	stats := []models.PostingStats{}
	if len(companyIDs) == 0 {
		return stats, nil
	}
	err := pgxscan.Select(ctx, s.pool, &stats,
		`SELECT p.id AS job_posting_id, p.job_title,
		 COUNT(*) FILTER (WHERE m.company_liked) AS liked,
		 COUNT(*) FILTER (WHERE m.company_asked_to_apply) AS asked,
		 COUNT(*) FILTER (WHERE m.candidate_liked AND m.company_liked) AS mutual,
		 COUNT(m.id) AS total
		 FROM job_postings p LEFT JOIN matches m ON m.job_posting_id = p.id
		 WHERE p.company_id = ANY($1)
		 GROUP BY p.id, p.job_title ORDER BY p.id`, companyIDs)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Notification operations

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Payload == "" {
		n.Payload = "{}"
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, kind, title, message, payload)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		n.UserID, n.Kind, n.Title, n.Message, n.Payload).Scan(&n.ID, &n.CreatedAt)
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT id, user_id, kind, title, message, payload, is_read, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY id DESC`

	notifications := []models.Notification{}
	if err := pgxscan.Select(ctx, s.pool, &notifications, query, userID); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Store) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return matching.ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ matching.Store = (*Store)(nil)
