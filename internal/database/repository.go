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

// Company operations

func (s *Store) CreateCompany(ctx context.Context, c *models.Company) error {
	query := `INSERT INTO companies (user_id, company_name) VALUES (?, ?)`
	result, err := s.db.ExecContext(ctx, query, c.UserID, c.CompanyName)
	if err != nil {
		return err
	}
	c.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	query := `SELECT id, user_id, company_name FROM companies WHERE id=?`
	c := &models.Company{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.CompanyName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	return c, err
}

// TeamCompanyIDs returns every company sharing companyID's name.
func (s *Store) TeamCompanyIDs(ctx context.Context, companyID int64) ([]int64, error) {
	query := `SELECT id FROM companies
			  WHERE company_name = (SELECT company_name FROM companies WHERE id=?)
			  ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, matching.ErrNotFound
	}
	return ids, nil
}

// Candidate operations

func (s *Store) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	query := `INSERT INTO candidates (user_id, name, email) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, c.UserID, c.Name, c.Email)
	if err != nil {
		return err
	}
	c.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	query := `SELECT id, user_id, name, email FROM candidates WHERE id=?`
	c := &models.Candidate{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	return c, err
}

// Job posting operations

const postingColumns = `id, company_id, job_title, product_vendor, product_type, job_role,
	seniority_level, work_type, employment_type, location, salary_min, salary_max,
	salary_currency, required_skills, is_active, created_at`

func scanPosting(row interface{ Scan(...any) error }) (*models.JobPosting, error) {
	p := &models.JobPosting{}
	err := row.Scan(&p.ID, &p.CompanyID, &p.JobTitle, &p.ProductVendor, &p.ProductType, &p.JobRole,
		&p.SeniorityLevel, &p.WorkType, &p.EmploymentType, &p.Location, &p.SalaryMin, &p.SalaryMax,
		&p.SalaryCurrency, &p.RequiredSkills, &p.IsActive, &p.CreatedAt)
	return p, err
}

func (s *Store) CreatePosting(ctx context.Context, p *models.JobPosting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO job_postings (company_id, job_title, product_vendor, product_type, job_role,
			  seniority_level, work_type, employment_type, location, salary_min, salary_max,
			  salary_currency, required_skills, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query, p.CompanyID, p.JobTitle, p.ProductVendor, p.ProductType,
		p.JobRole, p.SeniorityLevel, p.WorkType, p.EmploymentType, p.Location, p.SalaryMin, p.SalaryMax,
		currencyOrDefault(p.SalaryCurrency), p.RequiredSkills, p.IsActive)
	if err != nil {
		return err
	}
	p.ID, _ = result.LastInsertId()

	for _, sk := range p.PostingSkills {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO job_posting_skills (job_posting_id, name, category, rating) VALUES (?, ?, ?, ?)`,
			p.ID, sk.Name, categoryOrDefault(sk.Category), sk.Rating)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetPosting(ctx context.Context, id int64) (*models.JobPosting, error) {
	query := `SELECT ` + postingColumns + ` FROM job_postings WHERE id=?`
	p, err := scanPosting(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	skills, err := s.postingSkills(ctx, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	p.PostingSkills = skills[p.ID]
	return p, nil
}

func (s *Store) ListPostings(ctx context.Context, filter matching.PostingFilter) ([]models.JobPosting, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if len(filter.CompanyIDs) > 0 {
		where = append(where, "company_id IN ("+placeholders(len(filter.CompanyIDs))+")")
		for _, id := range filter.CompanyIDs {
			args = append(args, id)
		}
	}

	query := `SELECT ` + postingColumns + ` FROM job_postings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := []models.JobPosting{}
	ids := []int64{}
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills, err := s.postingSkills(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range postings {
		postings[i].PostingSkills = skills[postings[i].ID]
	}
	return postings, nil
}

func (s *Store) postingSkills(ctx context.Context, ids []int64) (map[int64][]models.PostingSkill, error) {
	out := map[int64][]models.PostingSkill{}
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT job_posting_id, name, category, rating FROM job_posting_skills
			  WHERE job_posting_id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postingID int64
			sk        models.PostingSkill
		)
		if err := rows.Scan(&postingID, &sk.Name, &sk.Category, &sk.Rating); err != nil {
			return nil, err
		}
		out[postingID] = append(out[postingID], sk)
	}
	return out, rows.Err()
}

// Job profile operations

const profileColumns = `id, candidate_id, profile_name, product_vendor, product_type, job_role,
	years_of_experience, work_type, employment_type, salary_min, salary_max, salary_currency`

func scanProfile(row interface{ Scan(...any) error }) (*models.JobProfile, error) {
	p := &models.JobProfile{}
	err := row.Scan(&p.ID, &p.CandidateID, &p.ProfileName, &p.ProductVendor, &p.ProductType, &p.JobRole,
		&p.YearsOfExperience, &p.WorkType, &p.EmploymentType, &p.SalaryMin, &p.SalaryMax, &p.SalaryCurrency)
	return p, err
}

// ValidateProfile enforces the limits on nested profile data.
func ValidateProfile(p *models.JobProfile) error {
	if len(p.Locations) > models.MaxLocationPreferences {
		return fmt.Errorf("%w: at most %d location preferences", matching.ErrInvalidArgument, models.MaxLocationPreferences)
	}
	for _, sk := range p.Skills {
		if sk.Proficiency < 1 || sk.Proficiency > 5 {
			return fmt.Errorf("%w: skill %q proficiency must be 1-5", matching.ErrInvalidArgument, sk.Name)
		}
	}
	return nil
}

func (s *Store) CreateProfile(ctx context.Context, p *models.JobProfile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO job_profiles (candidate_id, profile_name, product_vendor, product_type, job_role,
			  years_of_experience, work_type, employment_type, salary_min, salary_max, salary_currency)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query, p.CandidateID, p.ProfileName, p.ProductVendor, p.ProductType,
		p.JobRole, p.YearsOfExperience, p.WorkType, p.EmploymentType, p.SalaryMin, p.SalaryMax,
		currencyOrDefault(p.SalaryCurrency))
	if err != nil {
		return err
	}
	p.ID, _ = result.LastInsertId()

	for _, sk := range p.Skills {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO profile_skills (job_profile_id, name, category, proficiency) VALUES (?, ?, ?, ?)`,
			p.ID, sk.Name, categoryOrDefault(sk.Category), sk.Proficiency)
		if err != nil {
			return err
		}
	}
	for _, loc := range p.Locations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO location_preferences (job_profile_id, city, state, country) VALUES (?, ?, ?, ?)`,
			p.ID, loc.City, loc.State, loc.Country)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetProfile(ctx context.Context, id int64) (*models.JobProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM job_profiles WHERE id=?`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	profiles := []models.JobProfile{*p}
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
	return s.listProfiles(ctx, `SELECT `+profileColumns+` FROM job_profiles WHERE candidate_id=? ORDER BY id`, candidateID)
}

func (s *Store) listProfiles(ctx context.Context, query string, args ...any) ([]models.JobProfile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.JobProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadProfileDetails(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// loadProfileDetails fills skills and locations for all profiles in two queries.
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
	in := placeholders(len(ids))

	rows, err := s.db.QueryContext(ctx,
		`SELECT job_profile_id, name, category, proficiency FROM profile_skills
		 WHERE job_profile_id IN (`+in+`) ORDER BY id`, int64Args(ids)...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			profileID int64
			sk        models.Skill
		)
		if err := rows.Scan(&profileID, &sk.Name, &sk.Category, &sk.Proficiency); err != nil {
			rows.Close()
			return err
		}
		i := index[profileID]
		profiles[i].Skills = append(profiles[i].Skills, sk)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT job_profile_id, city, state, country FROM location_preferences
		 WHERE job_profile_id IN (`+in+`) ORDER BY id`, int64Args(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			profileID int64
			loc       models.LocationPreference
		)
		if err := rows.Scan(&profileID, &loc.City, &loc.State, &loc.Country); err != nil {
			return err
		}
		i := index[profileID]
		profiles[i].Locations = append(profiles[i].Locations, loc)
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "usd"
	}
	return c
}

func categoryOrDefault(c string) string {
	if c == "" {
		return "technical"
	}
	return c
}
