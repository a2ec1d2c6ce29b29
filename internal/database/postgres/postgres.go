// Package postgres is the PostgreSQL implementation of the matching store.
// Match rows are locked with SELECT ... FOR UPDATE while a swipe is applied.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khrees2412/talentmatch/internal/database"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// db is satisfied by both the pool and a transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open connects, verifies the connection and migrates the schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing db uri: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// RunMigrations creates all necessary tables.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		company_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS candidates (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS job_postings (
		id BIGSERIAL PRIMARY KEY,
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		job_title TEXT NOT NULL,
		product_vendor TEXT NOT NULL DEFAULT '',
		product_type TEXT NOT NULL DEFAULT '',
		job_role TEXT NOT NULL DEFAULT '',
		seniority_level TEXT NOT NULL DEFAULT '',
		work_type TEXT NOT NULL DEFAULT '' CHECK (work_type IN ('', 'remote', 'hybrid', 'onsite')),
		employment_type TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		salary_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		salary_max DOUBLE PRECISION NOT NULL DEFAULT 0,
		salary_currency TEXT NOT NULL DEFAULT 'usd',
		required_skills TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS job_posting_skills (
		id BIGSERIAL PRIMARY KEY,
		job_posting_id BIGINT NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'technical',
		rating INTEGER NOT NULL DEFAULT 3
	);

	CREATE TABLE IF NOT EXISTS job_profiles (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		profile_name TEXT NOT NULL,
		product_vendor TEXT NOT NULL DEFAULT '',
		product_type TEXT NOT NULL DEFAULT '',
		job_role TEXT NOT NULL DEFAULT '',
		years_of_experience INTEGER NOT NULL DEFAULT 0,
		work_type TEXT NOT NULL DEFAULT '' CHECK (work_type IN ('', 'remote', 'hybrid', 'onsite')),
		employment_type TEXT NOT NULL DEFAULT '',
		salary_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		salary_max DOUBLE PRECISION NOT NULL DEFAULT 0,
		salary_currency TEXT NOT NULL DEFAULT 'usd',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS profile_skills (
		id BIGSERIAL PRIMARY KEY,
		job_profile_id BIGINT NOT NULL REFERENCES job_profiles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'technical',
		proficiency INTEGER NOT NULL DEFAULT 3 CHECK (proficiency BETWEEN 1 AND 5)
	);

	CREATE TABLE IF NOT EXISTS location_preferences (
		id BIGSERIAL PRIMARY KEY,
		job_profile_id BIGINT NOT NULL REFERENCES job_profiles(id) ON DELETE CASCADE,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS swipes (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL,
		company_id BIGINT NOT NULL,
		job_profile_id BIGINT NOT NULL REFERENCES job_profiles(id) ON DELETE CASCADE,
		job_posting_id BIGINT NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
		action TEXT NOT NULL CHECK (action IN ('like', 'pass', 'ask_to_apply')),
		actor TEXT NOT NULL CHECK (actor IN ('candidate', 'recruiter')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS matches (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL,
		company_id BIGINT NOT NULL,
		job_posting_id BIGINT NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
		job_profile_id BIGINT NOT NULL REFERENCES job_profiles(id) ON DELETE CASCADE,
		candidate_liked BOOLEAN NOT NULL DEFAULT FALSE,
		company_liked BOOLEAN NOT NULL DEFAULT FALSE,
		candidate_asked_to_apply BOOLEAN NOT NULL DEFAULT FALSE,
		company_asked_to_apply BOOLEAN NOT NULL DEFAULT FALSE,
		match_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		scored BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (candidate_id, company_id, job_posting_id, job_profile_id)
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '{}',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_swipes_like_once ON swipes(candidate_id, job_posting_id, actor) WHERE action = 'like';
	CREATE INDEX IF NOT EXISTS idx_swipes_pair ON swipes(candidate_id, job_posting_id);
	CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(company_name);
	CREATE INDEX IF NOT EXISTS idx_job_postings_company ON job_postings(company_id);
	CREATE INDEX IF NOT EXISTS idx_job_profiles_candidate ON job_profiles(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_matches_company ON matches(company_id);
	CREATE INDEX IF NOT EXISTS idx_matches_scored ON matches(scored);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read);
	`
	_, err := pool.Exec(ctx, schema)
	return err
}

// notFound maps an empty result to matching.ErrNotFound.
func notFound(err error) error {
	if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
		return matching.ErrNotFound
	}
	return err
}

// inClause renders "$from, $from+1, ..." for n arguments.
func inClause(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// Company and candidate operations

func (s *Store) CreateCompany(ctx context.Context, c *models.Company) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO companies (user_id, company_name) VALUES ($1, $2) RETURNING id`,
		c.UserID, c.CompanyName).Scan(&c.ID)
}

func (s *Store) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := pgxscan.Get(ctx, s.pool, &c, `SELECT id, user_id, company_name FROM companies WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Store) TeamCompanyIDs(ctx context.Context, companyID int64) ([]int64, error) {
	var ids []int64
	err := pgxscan.Select(ctx, s.pool, &ids,
		`SELECT id FROM companies
		 WHERE company_name = (SELECT company_name FROM companies WHERE id = $1)
		 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, matching.ErrNotFound
	}
	return ids, nil
}

func (s *Store) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO candidates (user_id, name, email) VALUES ($1, $2, $3) RETURNING id`,
		c.UserID, c.Name, c.Email).Scan(&c.ID)
}

func (s *Store) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	var c models.Candidate
	err := pgxscan.Get(ctx, s.pool, &c, `SELECT id, user_id, name, email FROM candidates WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Job posting operations

const postingColumns = `id, company_id, job_title, product_vendor, product_type, job_role,
	seniority_level, work_type, employment_type, location, salary_min, salary_max,
	salary_currency, required_skills, is_active, created_at`

func (s *Store) CreatePosting(ctx context.Context, p *models.JobPosting) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO job_postings (company_id, job_title, product_vendor, product_type, job_role,
			 seniority_level, work_type, employment_type, location, salary_min, salary_max,
			 salary_currency, required_skills, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE(NULLIF($12, ''), 'usd'), $13, $14)
			 RETURNING id`,
			p.CompanyID, p.JobTitle, p.ProductVendor, p.ProductType, p.JobRole, p.SeniorityLevel,
			p.WorkType, p.EmploymentType, p.Location, p.SalaryMin, p.SalaryMax, p.SalaryCurrency,
			p.RequiredSkills, p.IsActive).Scan(&p.ID)
		if err != nil {
			return err
		}
		for _, sk := range p.PostingSkills {
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_posting_skills (job_posting_id, name, category, rating)
				 VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'technical'), $4)`,
				p.ID, sk.Name, sk.Category, sk.Rating); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetPosting(ctx context.Context, id int64) (*models.JobPosting, error) {
	var p models.JobPosting
	if err := pgxscan.Get(ctx, s.pool, &p, `SELECT `+postingColumns+` FROM job_postings WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	postings := []models.JobPosting{p}
	if err := s.loadPostingSkills(ctx, postings); err != nil {
		return nil, err
	}
	return &postings[0], nil
}

func (s *Store) ListPostings(ctx context.Context, filter matching.PostingFilter) ([]models.JobPosting, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	if len(filter.CompanyIDs) > 0 {
		where = append(where, "company_id IN ("+inClause(1, len(filter.CompanyIDs))+")")
		args = append(args, int64Args(filter.CompanyIDs)...)
	}
	query := `SELECT ` + postingColumns + ` FROM job_postings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	postings := []models.JobPosting{}
	if err := pgxscan.Select(ctx, s.pool, &postings, query, args...); err != nil {
		return nil, err
	}
	if err := s.loadPostingSkills(ctx, postings); err != nil {
		return nil, err
	}
	return postings, nil
}

func (s *Store) loadPostingSkills(ctx context.Context, postings []models.JobPosting) error {
	if len(postings) == 0 {
		return nil
	}
	ids := make([]int64, len(postings))
	index := make(map[int64]int, len(postings))
	for i, p := range postings {
		ids[i] = p.ID
		index[p.ID] = i
	}

	var rows []struct {
		JobPostingID int64 `db:"job_posting_id"`
		models.PostingSkill
	}
	err := pgxscan.Select(ctx, s.pool, &rows,
		`SELECT job_posting_id, name, category, rating FROM job_posting_skills
		 WHERE job_posting_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := index[r.JobPostingID]
		postings[i].PostingSkills = append(postings[i].PostingSkills, r.PostingSkill)
	}
	return nil
}

// Job profile operations

const profileColumns = `id, candidate_id, profile_name, product_vendor, product_type, job_role,
	years_of_experience, work_type, employment_type, salary_min, salary_max, salary_currency`

func (s *Store) CreateProfile(ctx context.Context, p *models.JobProfile) error {
	if err := database.ValidateProfile(p); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO job_profiles (candidate_id, profile_name, product_vendor, product_type, job_role,
			 years_of_experience, work_type, employment_type, salary_min, salary_max, salary_currency)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE(NULLIF($11, ''), 'usd'))
			 RETURNING id`,
			p.CandidateID, p.ProfileName, p.ProductVendor, p.ProductType, p.JobRole, p.YearsOfExperience,
			p.WorkType, p.EmploymentType, p.SalaryMin, p.SalaryMax, p.SalaryCurrency).Scan(&p.ID)
		if err != nil {
			return err
		}
		for _, sk := range p.Skills {
			if _, err := tx.Exec(ctx,
				`INSERT INTO profile_skills (job_profile_id, name, category, proficiency)
				 VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'technical'), $4)`,
				p.ID, sk.Name, sk.Category, sk.Proficiency); err != nil {
				return err
			}
		}
		for _, loc := range p.Locations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO location_preferences (job_profile_id, city, state, country) VALUES ($1, $2, $3, $4)`,
				p.ID, loc.City, loc.State, loc.Country); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetProfile(ctx context.Context, id int64) (*models.JobProfile, error) {
	var p models.JobProfile
	if err := pgxscan.Get(ctx, s.pool, &p, `SELECT `+profileColumns+` FROM job_profiles WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	profiles := []models.JobProfile{p}
	if err := s.loadProfileDetails(ctx, profiles); err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.JobProfile, error) {
	return s.listProfiles(ctx, `SELECT `+profileColumns+` FROM job_profiles ORDER BY id`)
}

// ListCandidateProfiles returns the profiles owned by one candidate.
func (s *Store) ListCandidateProfiles(ctx context.Context, candidateID int64) ([]models.JobProfile, error) {
	return s.listProfiles(ctx, `SELECT `+profileColumns+` FROM job_profiles WHERE candidate_id = $1 ORDER BY id`, candidateID)
}

func (s *Store) listProfiles(ctx context.Context, query string, args ...any) ([]models.JobProfile, error) {
	profiles := []models.JobProfile{}
	if err := pgxscan.Select(ctx, s.pool, &profiles, query, args...); err != nil {
		return nil, err
	}
	if err := s.loadProfileDetails(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Store) loadProfileDetails(ctx context.Context, profiles []models.JobProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]int64, len(profiles))
	index := make(map[int64]int, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
		index[p.ID] = i
	}

	var skills []struct {
		JobProfileID int64 `db:"job_profile_id"`
		models.Skill
	}
	if err := pgxscan.Select(ctx, s.pool, &skills,
		`SELECT job_profile_id, name, category, proficiency FROM profile_skills
		 WHERE job_profile_id = ANY($1) ORDER BY id`, ids); err != nil {
		return err
	}
	for _, r := range skills {
		i := index[r.JobProfileID]
		profiles[i].Skills = append(profiles[i].Skills, r.Skill)
	}

	var locations []struct {
		JobProfileID int64 `db:"job_profile_id"`
		models.LocationPreference
	}
	if err := pgxscan.Select(ctx, s.pool, &locations,
		`SELECT job_profile_id, city, state, country FROM location_preferences
		 WHERE job_profile_id = ANY($1) ORDER BY id`, ids); err != nil {
		return err
	}
	for _, r := range locations {
		i := index[r.JobProfileID]
		profiles[i].Locations = append(profiles[i].Locations, r.LocationPreference)
	}
	return nil
}
