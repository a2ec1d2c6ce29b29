package matcher

import (
	"testing"

	"github.com/khrees2412/talentmatch/pkg/models"
)

func oraclePosting() *models.JobPosting {
	return &models.JobPosting{
		ID:             1,
		CompanyID:      10,
		JobTitle:       "Fusion Functional Consultant",
		ProductVendor:  "Oracle",
		ProductType:    "Fusion Cloud",
		JobRole:        "Oracle Fusion Functional Consultant",
		SeniorityLevel: "5-8 years",
		Location:       "San Francisco, CA",
		SalaryMin:      140,
		SalaryMax:      180,
		RequiredSkills: `["General Ledger","OTBI"]`,
	}
}

func oracleProfile() *models.JobProfile {
	return &models.JobProfile{
		ID:                1,
		CandidateID:       100,
		ProductVendor:     "Oracle",
		ProductType:       "Fusion Cloud",
		JobRole:           "Oracle Fusion Functional Consultant",
		YearsOfExperience: 8,
		SalaryMin:         140,
		SalaryMax:         180,
		Skills: []models.Skill{
			{Name: "General Ledger", Proficiency: 4},
			{Name: "OTBI Reporting", Proficiency: 3},
		},
		Locations: []models.LocationPreference{{City: "San Francisco", State: "CA"}},
	}
}

func TestScoreOracleScenario(t *testing.T) {
	for _, view := range []View{RecruiterView, CandidateView} {
		res := Score(oraclePosting(), oracleProfile(), view)
		b := res.Breakdown

		if b.Product != 35 || b.Skills != 25 || b.Experience != 20 || b.Salary != 10 || b.Location != 10 {
			t.Errorf("%s: unexpected breakdown %+v", view.Name, b)
		}
		if res.Total != 100 {
			t.Errorf("%s: expected total 100, got %d", view.Name, res.Total)
		}
		if len(b.MatchedSkills) != 2 {
			t.Errorf("%s: expected 2 matched skills, got %v", view.Name, b.MatchedSkills)
		}
	}
}

func TestScoreClampsBonus(t *testing.T) {
	posting := oraclePosting()
	profile := oracleProfile()
	posting.WorkType = models.WorkRemote
	profile.WorkType = models.WorkRemote

	res := Score(posting, profile, RecruiterView)
	if res.Breakdown.Bonus != WorkModeBonus {
		t.Errorf("expected bonus %d, got %d", WorkModeBonus, res.Breakdown.Bonus)
	}
	if res.Total != MaxScore {
		t.Errorf("expected total clamped to %d, got %d", MaxScore, res.Total)
	}

	res = Score(posting, profile, CandidateView)
	if res.Breakdown.Bonus != 0 {
		t.Errorf("candidate view should not award a bonus, got %d", res.Breakdown.Bonus)
	}
}

func TestScoreNilInputs(t *testing.T) {
	if res := Score(nil, oracleProfile(), RecruiterView); res.Total != 0 {
		t.Errorf("expected 0 for nil posting, got %d", res.Total)
	}
	if res := Score(oraclePosting(), nil, RecruiterView); res.Total != 0 {
		t.Errorf("expected 0 for nil profile, got %d", res.Total)
	}
}

func TestMatchProduct(t *testing.T) {
	tests := []struct {
		name      string
		vendor    string
		typ       string
		role      string
		view      View
		wantScore int
	}{
		{"exact", "Oracle", "Fusion Cloud", "Oracle Fusion Functional Consultant", RecruiterView, 35},
		{"role differs recruiter", "Oracle", "Fusion Cloud", "Architect", RecruiterView, 25},
		{"role differs candidate", "Oracle", "Fusion Cloud", "Architect", CandidateView, 20},
		{"vendor only recruiter", "Oracle", "EBS", "Architect", RecruiterView, 15},
		{"vendor only candidate", "Oracle", "EBS", "Architect", CandidateView, 20},
		{"vendor differs", "SAP", "Fusion Cloud", "Oracle Fusion Functional Consultant", RecruiterView, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := oracleProfile()
			profile.ProductVendor = tt.vendor
			profile.ProductType = tt.typ
			profile.JobRole = tt.role

			got := Score(oraclePosting(), profile, tt.view).Breakdown.Product
			if got != tt.wantScore {
				t.Errorf("expected %d, got %d", tt.wantScore, got)
			}
		})
	}
}

func TestMatchSkills(t *testing.T) {
	tests := []struct {
		name        string
		required    string
		skills      []string
		wantScore   int
		wantMatched int
	}{
		{"all matched by substring", `["General Ledger","OTBI"]`, []string{"general ledger", "OTBI Reporting"}, 25, 2},
		{"profile name inside requirement", `["Advanced SQL Tuning"]`, []string{"sql"}, 25, 1},
		{"half matched", `["Go","Kafka"]`, []string{"GO"}, 13, 1},
		{"one of six rounds to four", `["Go","Rust","Kafka","Redis","Docker","Terraform"]`, []string{"Go"}, 4, 1},
		{"object entries", `[{"skill":"Python","category":"technical"},{"name":"Django"}]`, []string{"python", "django"}, 25, 2},
		{"malformed json", `not json`, []string{"Go"}, 0, 0},
		{"no profile skills", `["Go"]`, nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting := &models.JobPosting{RequiredSkills: tt.required}
			skills := make([]models.Skill, 0, len(tt.skills))
			for _, s := range tt.skills {
				skills = append(skills, models.Skill{Name: s})
			}

			got, matched := matchSkills(posting, skills)
			if got != tt.wantScore {
				t.Errorf("expected score %d, got %d", tt.wantScore, got)
			}
			if len(matched) != tt.wantMatched {
				t.Errorf("expected %d matched, got %v", tt.wantMatched, matched)
			}
		})
	}
}

func TestMatchSkillsFallsBackToPostingSkills(t *testing.T) {
	posting := &models.JobPosting{
		PostingSkills: []models.PostingSkill{{Name: "Kubernetes"}, {Name: "Terraform"}},
	}
	got, _ := matchSkills(posting, []models.Skill{{Name: "kubernetes"}, {Name: "terraform"}})
	if got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
}

func TestMatchExperience(t *testing.T) {
	tests := []struct {
		seniority string
		years     int
		want      int
	}{
		{"5-8 years", 8, 20},
		{"5-8 years", 5, 20},
		{"5-8 years", 2, 8},
		{"10+ years", 5, 10},
		{"0-2 years", 0, 20},
		{"Senior", 3, 10},
		{"Senior", 2, 0},
		{"", 7, 10},
	}

	for _, tt := range tests {
		if got := matchExperience(tt.seniority, tt.years); got != tt.want {
			t.Errorf("matchExperience(%q, %d) = %d, want %d", tt.seniority, tt.years, got, tt.want)
		}
	}
}

func TestParseMinimumYears(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"5-8 years", 5, true},
		{" 3 - 5", 3, true},
		{"10+ years", 10, true},
		{"7", 7, true},
		{"2 to 4 years", 2, true},
		{"senior", 0, false},
		{"five-eight", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseMinimumYears(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseMinimumYears(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMatchSalary(t *testing.T) {
	tests := []struct {
		name                   string
		postingMin, postingMax float64
		profileMin, profileMax float64
		want                   int
	}{
		{"full overlap", 140, 180, 140, 180, 10},
		{"partial overlap", 100, 150, 140, 200, 10},
		{"within twenty percent", 100, 120, 130, 150, 5},
		{"too expensive", 100, 120, 150, 200, 0},
		{"posting max missing", 100, 0, 500, 600, 10},
		{"profile bounds missing", 100, 120, 0, 0, 10},
		{"candidate below range", 100, 120, 50, 80, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting := &models.JobPosting{SalaryMin: tt.postingMin, SalaryMax: tt.postingMax}
			profile := &models.JobProfile{SalaryMin: tt.profileMin, SalaryMax: tt.profileMax}
			if got := matchSalary(posting, profile); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMatchLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		prefs    []models.LocationPreference
		want     int
	}{
		{"city", "Austin, TX", []models.LocationPreference{{City: "Austin", State: "Texas"}}, 10},
		{"state", "Dallas, TX", []models.LocationPreference{{City: "Houston", State: "TX"}}, 10},
		{"remote posting", "Remote - US", []models.LocationPreference{{City: "Denver", State: "CO"}}, 10},
		{"remote preference", "Chicago, IL", []models.LocationPreference{{City: "Remote"}}, 10},
		{"second preference", "Boston, MA", []models.LocationPreference{{City: "Denver"}, {City: "boston"}}, 10},
		{"empty fields never match", "Boston, MA", []models.LocationPreference{{}}, 0},
		{"no preferences", "Remote", nil, 0},
		{"no match", "Boston, MA", []models.LocationPreference{{City: "Denver", State: "CO"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchLocation(tt.location, tt.prefs); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	postings := []*models.JobPosting{
		oraclePosting(),
		{},
		{ProductVendor: "Oracle", RequiredSkills: `[1,2,3]`, SeniorityLevel: "-3", SalaryMin: -10, SalaryMax: -1},
		{ProductVendor: "SAP", ProductType: "HANA", Location: "remote", WorkType: models.WorkHybrid},
	}
	profiles := []*models.JobProfile{
		oracleProfile(),
		{},
		{ProductVendor: "Oracle", YearsOfExperience: -4, SalaryMin: 1e9},
		{ProductVendor: "SAP", ProductType: "HANA", WorkType: models.WorkHybrid, Locations: []models.LocationPreference{{City: "x"}}},
	}

	for _, p := range postings {
		for _, pr := range profiles {
			for _, view := range []View{RecruiterView, CandidateView} {
				res := Score(p, pr, view)
				b := res.Breakdown
				if res.Total < 0 || res.Total > MaxScore {
					t.Fatalf("total out of bounds: %d", res.Total)
				}
				if b.Product > ProductWeight || b.Skills > SkillsWeight || b.Experience > ExperienceWeight ||
					b.Salary > SalaryWeight || b.Location > LocationWeight || b.Bonus > WorkModeBonus {
					t.Fatalf("sub-score out of bounds: %+v", b)
				}
			}
		}
	}
}
