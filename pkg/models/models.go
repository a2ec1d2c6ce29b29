package models

import "time"

// MaxLocationPreferences caps the preferred locations stored per profile.
const MaxLocationPreferences = 3

// WorkType is the working arrangement offered or wanted.
type WorkType string

const (
	WorkRemote WorkType = "remote"
	WorkHybrid WorkType = "hybrid"
	WorkOnsite WorkType = "onsite"
)

// EmploymentType is the contract form of a role.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "ft"
	EmploymentPartTime EmploymentType = "pt"
	EmploymentContract EmploymentType = "contract"
	EmploymentC2C      EmploymentType = "c2c"
	EmploymentW2       EmploymentType = "w2"
)

// Action is what one side did when it swiped.
type Action string

const (
	ActionLike       Action = "like"
	ActionPass       Action = "pass"
	ActionAskToApply Action = "ask_to_apply"
)

// Valid reports whether a is a known swipe action.
func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionPass, ActionAskToApply:
		return true
	}
	return false
}

// Actor identifies which side of the marketplace performed a swipe.
type Actor string

const (
	ActorCandidate Actor = "candidate"
	ActorRecruiter Actor = "recruiter"
)

// Valid reports whether a is a known actor.
func (a Actor) Valid() bool {
	return a == ActorCandidate || a == ActorRecruiter
}

// Candidate owns one or more job profiles.
type Candidate struct {
	ID     int64  `json:"id" db:"id" yaml:"id"`
	UserID int64  `json:"user_id" db:"user_id" yaml:"user_id"`
	Name   string `json:"name" db:"name" yaml:"name"`
	Email  string `json:"email" db:"email" yaml:"email"`
}

// Company owns job postings. Companies sharing a CompanyName form a team.
type Company struct {
	ID          int64  `json:"id" db:"id" yaml:"id"`
	UserID      int64  `json:"user_id" db:"user_id" yaml:"user_id"`
	CompanyName string `json:"company_name" db:"company_name" yaml:"company_name"`
}

// PostingSkill is a structured skill requirement attached to a posting.
type PostingSkill struct {
	Name     string `json:"name" db:"name" yaml:"name"`
	Category string `json:"category" db:"category" yaml:"category"`
	Rating   int    `json:"rating" db:"rating" yaml:"rating"`
}

// JobPosting is the employer-side demand.
type JobPosting struct {
	ID             int64          `json:"id" db:"id" yaml:"id"`
	CompanyID      int64          `json:"company_id" db:"company_id" yaml:"company_id"`
	JobTitle       string         `json:"job_title" db:"job_title" yaml:"job_title"`
	ProductVendor  string         `json:"product_vendor" db:"product_vendor" yaml:"product_vendor"`
	ProductType    string         `json:"product_type" db:"product_type" yaml:"product_type"`
	JobRole        string         `json:"job_role" db:"job_role" yaml:"job_role"`
	SeniorityLevel string         `json:"seniority_level" db:"seniority_level" yaml:"seniority_level"`
	WorkType       WorkType       `json:"work_type" db:"work_type" yaml:"work_type"`
	EmploymentType EmploymentType `json:"employment_type" db:"employment_type" yaml:"employment_type"`
	Location       string         `json:"location" db:"location" yaml:"location"`
	SalaryMin      float64        `json:"salary_min" db:"salary_min" yaml:"salary_min"`
	SalaryMax      float64        `json:"salary_max" db:"salary_max" yaml:"salary_max"`
	SalaryCurrency string         `json:"salary_currency" db:"salary_currency" yaml:"salary_currency"`
	RequiredSkills string         `json:"required_skills" db:"required_skills" yaml:"required_skills"` // JSON array
	PostingSkills  []PostingSkill `json:"posting_skills,omitempty" db:"-" yaml:"posting_skills"`
	IsActive       bool           `json:"is_active" db:"is_active" yaml:"-"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at" yaml:"-"`
}

// Skill is a candidate skill with a 1-5 proficiency.
type Skill struct {
	Name        string `json:"name" db:"name" yaml:"name"`
	Category    string `json:"category" db:"category" yaml:"category"`
	Proficiency int    `json:"proficiency" db:"proficiency" yaml:"proficiency"`
}

// LocationPreference is one of up to three places a candidate would work.
type LocationPreference struct {
	City    string `json:"city" db:"city" yaml:"city"`
	State   string `json:"state" db:"state" yaml:"state"`
	Country string `json:"country" db:"country" yaml:"country"`
}

// JobProfile is the candidate-side offer.
type JobProfile struct {
	ID                int64                `json:"id" db:"id" yaml:"id"`
	CandidateID       int64                `json:"candidate_id" db:"candidate_id" yaml:"candidate_id"`
	ProfileName       string               `json:"profile_name" db:"profile_name" yaml:"profile_name"`
	ProductVendor     string               `json:"product_vendor" db:"product_vendor" yaml:"product_vendor"`
	ProductType       string               `json:"product_type" db:"product_type" yaml:"product_type"`
	JobRole           string               `json:"job_role" db:"job_role" yaml:"job_role"`
	YearsOfExperience int                  `json:"years_of_experience" db:"years_of_experience" yaml:"years_of_experience"`
	WorkType          WorkType             `json:"work_type" db:"work_type" yaml:"work_type"`
	EmploymentType    EmploymentType       `json:"employment_type" db:"employment_type" yaml:"employment_type"`
	SalaryMin         float64              `json:"salary_min" db:"salary_min" yaml:"salary_min"`
	SalaryMax         float64              `json:"salary_max" db:"salary_max" yaml:"salary_max"`
	SalaryCurrency    string               `json:"salary_currency" db:"salary_currency" yaml:"salary_currency"`
	Skills            []Skill              `json:"skills" db:"-" yaml:"skills"`
	Locations         []LocationPreference `json:"locations" db:"-" yaml:"locations"`
}

// Swipe is one immutable ledger entry.
type Swipe struct {
	ID           int64     `json:"id" db:"id"`
	CandidateID  int64     `json:"candidate_id" db:"candidate_id"`
	CompanyID    int64     `json:"company_id" db:"company_id"`
	JobProfileID int64     `json:"job_profile_id" db:"job_profile_id"`
	JobPostingID int64     `json:"job_posting_id" db:"job_posting_id"`
	Action       Action    `json:"action" db:"action"`
	Actor        Actor     `json:"actor" db:"actor"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// MatchKey is the natural key of a match record.
type MatchKey struct {
	CandidateID  int64 `json:"candidate_id"`
	CompanyID    int64 `json:"company_id"`
	JobPostingID int64 `json:"job_posting_id"`
	JobProfileID int64 `json:"job_profile_id"`
}

// MatchFlags are the four interest flags carried by a match.
type MatchFlags struct {
	CandidateLiked        bool `json:"candidate_liked" db:"candidate_liked"`
	CompanyLiked          bool `json:"company_liked" db:"company_liked"`
	CandidateAskedToApply bool `json:"candidate_asked_to_apply" db:"candidate_asked_to_apply"`
	CompanyAskedToApply   bool `json:"company_asked_to_apply" db:"company_asked_to_apply"`
}

// Mutual is true when both sides liked.
func (f MatchFlags) Mutual() bool {
	return f.CandidateLiked && f.CompanyLiked
}

// Match aggregates both sides' interest in one (candidate, company, posting, profile).
type Match struct {
	ID           int64 `json:"id" db:"id"`
	CandidateID  int64 `json:"candidate_id" db:"candidate_id"`
	CompanyID    int64 `json:"company_id" db:"company_id"`
	JobPostingID int64 `json:"job_posting_id" db:"job_posting_id"`
	JobProfileID int64 `json:"job_profile_id" db:"job_profile_id"`
	MatchFlags
	MatchPercentage float64   `json:"match_percentage" db:"match_percentage"`
	Scored          bool      `json:"scored" db:"scored"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Key returns the natural key of m.
func (m *Match) Key() MatchKey {
	return MatchKey{
		CandidateID:  m.CandidateID,
		CompanyID:    m.CompanyID,
		JobPostingID: m.JobPostingID,
		JobProfileID: m.JobProfileID,
	}
}

// State derives the match state from the two liked flags.
func (m *Match) State() MatchState {
	if m == nil {
		return StateNone
	}
	return DeriveState(true, m.MatchFlags)
}

// MatchState is the derived interest state of a match.
type MatchState string

const (
	StateNone              MatchState = "NONE"
	StateOneSidedCandidate MatchState = "ONE_SIDED_CANDIDATE"
	StateOneSidedCompany   MatchState = "ONE_SIDED_COMPANY"
	StateMutual            MatchState = "MUTUAL"
)

// DeriveState maps the liked flags of an (optionally missing) match to its state.
func DeriveState(exists bool, f MatchFlags) MatchState {
	switch {
	case !exists:
		return StateNone
	case f.Mutual():
		return StateMutual
	case f.CandidateLiked:
		return StateOneSidedCandidate
	case f.CompanyLiked:
		return StateOneSidedCompany
	}
	return StateNone
}

// Notification is a persisted inbox entry.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Kind      string    `json:"kind" db:"kind"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Payload   string    `json:"payload" db:"payload"` // JSON object
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostingStats summarises interest in one posting.
type PostingStats struct {
	JobPostingID int64  `json:"job_posting_id" db:"job_posting_id"`
	JobTitle     string `json:"job_title" db:"job_title"`
	Liked        int    `json:"liked" db:"liked"`
	Asked        int    `json:"asked" db:"asked"`
	Mutual       int    `json:"mutual" db:"mutual"`
	Total        int    `json:"total" db:"total"`
}
