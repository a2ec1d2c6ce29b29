package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
)

const matchColumns = `id, candidate_id, company_id, job_posting_id, job_profile_id,
	candidate_liked, company_liked, candidate_asked_to_apply, company_asked_to_apply,
	match_percentage, scored, created_at, updated_at`

func scanMatch(row interface{ Scan(...any) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(&m.ID, &m.CandidateID, &m.CompanyID, &m.JobPostingID, &m.JobProfileID,
		&m.CandidateLiked, &m.CompanyLiked, &m.CandidateAskedToApply, &m.CompanyAskedToApply,
		&m.MatchPercentage, &m.Scored, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ApplySwipe appends the swipe and applies mutate to its match in one
// transaction. A like that already exists for the same side is dropped by
// the partial unique index and leaves the match untouched.
func (s *Store) ApplySwipe(ctx context.Context, swipe *models.Swipe, placeholder float64, mutate matching.Mutation) (*matching.SwipeRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `INSERT INTO swipes (candidate_id, company_id, job_profile_id, job_posting_id, action, actor)
			  VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`
	result, err := tx.ExecContext(ctx, query, swipe.CandidateID, swipe.CompanyID, swipe.JobProfileID,
		swipe.JobPostingID, swipe.Action, swipe.Actor)
	if err != nil {
		return nil, fmt.Errorf("insert swipe: %w", err)
	}

	key := models.MatchKey{
		CandidateID:  swipe.CandidateID,
		CompanyID:    swipe.CompanyID,
		JobPostingID: swipe.JobPostingID,
		JobProfileID: swipe.JobProfileID,
	}

	if n, _ := result.RowsAffected(); n == 0 {
		m, err := findMatch(ctx, tx, key)
		if err != nil {
			return nil, err
		}
		return &matching.SwipeRecord{Created: false, Before: m, After: m}, nil
	}
	swipe.ID, _ = result.LastInsertId()

	before, after, err := upsertMatch(ctx, tx, key, placeholder, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &matching.SwipeRecord{Created: true, Before: before, After: after}, nil
}

// upsertMatch creates the match row when mutate wants one, then applies mutate
// to the row as it exists inside the transaction.
func upsertMatch(ctx context.Context, tx *sql.Tx, key models.MatchKey, placeholder float64, mutate matching.Mutation) (before, after *models.Match, err error) {
	before, err = findMatch(ctx, tx, key)
	if err != nil {
		return nil, nil, err
	}

	if before == nil {
		if _, write := mutate(nil); !write {
			return nil, nil, nil
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO matches (candidate_id, company_id, job_posting_id, job_profile_id, match_percentage)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(candidate_id, company_id, job_posting_id, job_profile_id) DO NOTHING`,
			key.CandidateID, key.CompanyID, key.JobPostingID, key.JobProfileID, placeholder)
		if err != nil {
			return nil, nil, fmt.Errorf("insert match: %w", err)
		}
		row, err := findMatch(ctx, tx, key)
		if err != nil {
			return nil, nil, err
		}
		if n, _ := result.RowsAffected(); n == 0 {
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
	if err := writeFlags(ctx, tx, after.ID, flags); err != nil {
		return nil, nil, err
	}
	after, err = getMatch(ctx, tx, after.ID)
	return before, after, err
}

func writeFlags(ctx context.Context, q querier, id int64, f models.MatchFlags) error {
	_, err := q.ExecContext(ctx,
		`UPDATE matches SET candidate_liked=?, company_liked=?, candidate_asked_to_apply=?,
		 company_asked_to_apply=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		f.CandidateLiked, f.CompanyLiked, f.CandidateAskedToApply, f.CompanyAskedToApply, id)
	if err != nil {
		return fmt.Errorf("update match %d: %w", id, err)
	}
	return nil
}

// UpdateMatch applies mutate to an existing match.
func (s *Store) UpdateMatch(ctx context.Context, matchID int64, mutate matching.Mutation) (*models.Match, *models.Match, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	before, err := getMatch(ctx, tx, matchID)
	if err != nil {
		return nil, nil, err
	}

	flags, write := mutate(before)
	if !write {
		return before, before, nil
	}
	if err := writeFlags(ctx, tx, matchID, flags); err != nil {
		return nil, nil, err
	}
	after, err := getMatch(ctx, tx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return before, after, tx.Commit()
}

func getMatch(ctx context.Context, q querier, id int64) (*models.Match, error) {
	m, err := scanMatch(q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	return m, err
}

// findMatch returns nil, nil when the key has no match.
func findMatch(ctx context.Context, q querier, key models.MatchKey) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
			  WHERE candidate_id=? AND company_id=? AND job_posting_id=? AND job_profile_id=?`
	m, err := scanMatch(q.QueryRowContext(ctx, query, key.CandidateID, key.CompanyID, key.JobPostingID, key.JobProfileID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (s *Store) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *Store) FindMatch(ctx context.Context, key models.MatchKey) (*models.Match, error) {
	return findMatch(ctx, s.db, key)
}

// LatestSwipe returns the newest swipe by actor on a pair, or nil.
func (s *Store) LatestSwipe(ctx context.Context, candidateID, postingID int64, actor models.Actor) (*models.Swipe, error) {
	query := `SELECT id, candidate_id, company_id, job_profile_id, job_posting_id, action, actor, created_at
			  FROM swipes WHERE candidate_id=? AND job_posting_id=? AND actor=?
			  ORDER BY id DESC LIMIT 1`
	sw := &models.Swipe{}
	err := s.db.QueryRowContext(ctx, query, candidateID, postingID, actor).Scan(&sw.ID, &sw.CandidateID,
		&sw.CompanyID, &sw.JobProfileID, &sw.JobPostingID, &sw.Action, &sw.Actor, &sw.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sw, err
}

// CountSwipes counts ledger rows for a pair and actor.
func (s *Store) CountSwipes(ctx context.Context, candidateID, postingID int64, actor models.Actor) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM swipes WHERE candidate_id=? AND job_posting_id=? AND actor=?`,
		candidateID, postingID, actor).Scan(&n)
	return n, err
}

func (s *Store) ListMatches(ctx context.Context, filter matching.MatchFilter) ([]models.Match, error) {
	var (
		where []string
		args  []any
	)
	if filter.CandidateID != 0 {
		where = append(where, "candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	if len(filter.CompanyIDs) > 0 {
		where = append(where, "company_id IN ("+placeholders(len(filter.CompanyIDs))+")")
		args = append(args, int64Args(filter.CompanyIDs)...)
	}
	if filter.MutualOnly {
		where = append(where, "candidate_liked = 1 AND company_liked = 1")
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id DESC"
	return s.queryMatches(ctx, query, args...)
}

func (s *Store) ListUnscoredMatches(ctx context.Context, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches WHERE scored = 0 ORDER BY id LIMIT ?`, limit)
}

func (s *Store) queryMatches(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (s *Store) SetMatchScore(ctx context.Context, matchID int64, percentage float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE matches SET match_percentage=?, scored=1, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		percentage, matchID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return matching.ErrNotFound
	}
	return nil
}

func (s *Store) PostingStats(ctx context.Context, companyIDs []int64) ([]models.PostingStats, error) {
	if len(companyIDs) == 0 {
		return []models.PostingStats{}, nil
	}
	query := `SELECT p.id, p.job_title,
			  COALESCE(SUM(CASE WHEN m.company_liked THEN 1 ELSE 0 END), 0),
			  COALESCE(SUM(CASE WHEN m.company_asked_to_apply THEN 1 ELSE 0 END), 0),
			  COALESCE(SUM(CASE WHEN m.candidate_liked AND m.company_liked THEN 1 ELSE 0 END), 0),
			  COUNT(m.id)
			  FROM job_postings p LEFT JOIN matches m ON m.job_posting_id = p.id
			  WHERE p.company_id IN (` + placeholders(len(companyIDs)) + `)
			  GROUP BY p.id, p.job_title ORDER BY p.id`
	rows, err := s.db.QueryContext(ctx, query, int64Args(companyIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.PostingStats{}
	for rows.Next() {
		var st models.PostingStats
		if err := rows.Scan(&st.JobPostingID, &st.JobTitle, &st.Liked, &st.Asked, &st.Mutual, &st.Total); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
