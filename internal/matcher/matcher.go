package matcher

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/khrees2412/talentmatch/pkg/models"
	"golang.org/x/text/cases"
)

// Factor weights. The total is clamped to MaxScore after any bonus.
const (
	ProductWeight    = 35
	SkillsWeight     = 25
	ExperienceWeight = 20
	SalaryWeight     = 10
	LocationWeight   = 10
	WorkModeBonus    = 5
	MaxScore         = 100
)

// View selects the product credits and bonus used by a ranking context.
type View struct {
	Name string
	// RoleMismatch is awarded when vendor and type match but the role differs.
	RoleMismatch int
	// VendorOnly is awarded when only the vendor matches.
	VendorOnly int
	// WorkModeBonus enables the +5 for an exact work type match.
	WorkModeBonus bool
}

var (
	// RecruiterView scores candidate profiles for a posting.
	RecruiterView = View{Name: "recruiter", RoleMismatch: 25, VendorOnly: 15, WorkModeBonus: true}
	// CandidateView scores postings for a candidate profile.
	CandidateView = View{Name: "candidate", RoleMismatch: 20, VendorOnly: 20}
)

// Breakdown explains how a score was reached.
type Breakdown struct {
	Product       int      `json:"product"`
	Skills        int      `json:"skills"`
	Experience    int      `json:"experience"`
	Salary        int      `json:"salary"`
	Location      int      `json:"location"`
	Bonus         int      `json:"bonus"`
	MatchedSkills []string `json:"matched_skills"`
}

// Result is a bounded score with its breakdown.
type Result struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// Score calculates how well a profile fits a posting, from 0 to 100.
// Missing or malformed optional inputs reduce the score instead of failing.
func Score(posting *models.JobPosting, profile *models.JobProfile, view View) Result {
	var b Breakdown
	if posting == nil || profile == nil {
		return Result{Breakdown: b}
	}

	b.Product = clamp(matchProduct(posting, profile, view), ProductWeight)
	b.Skills, b.MatchedSkills = matchSkills(posting, profile.Skills)
	b.Skills = clamp(b.Skills, SkillsWeight)
	b.Experience = clamp(matchExperience(posting.SeniorityLevel, profile.YearsOfExperience), ExperienceWeight)
	b.Salary = clamp(matchSalary(posting, profile), SalaryWeight)
	b.Location = clamp(matchLocation(posting.Location, profile.Locations), LocationWeight)

	if view.WorkModeBonus && posting.WorkType != "" && posting.WorkType == profile.WorkType {
		b.Bonus = WorkModeBonus
	}

	total := b.Product + b.Skills + b.Experience + b.Salary + b.Location + b.Bonus
	return Result{Total: clamp(total, MaxScore), Breakdown: b}
}

// matchProduct compares vendor, type and role.
func matchProduct(posting *models.JobPosting, profile *models.JobProfile, view View) int {
	if posting.ProductVendor == "" || posting.ProductVendor != profile.ProductVendor {
		return 0
	}
	if posting.ProductType != profile.ProductType {
		return view.VendorOnly
	}
	if posting.JobRole == profile.JobRole {
		return ProductWeight
	}
	return view.RoleMismatch
}

// matchSkills counts required skills covered by the profile.
func matchSkills(posting *models.JobPosting, skills []models.Skill) (int, []string) {
	required := requiredSkills(posting)
	if len(required) == 0 || len(skills) == 0 {
		return 0, nil
	}

	fold := cases.Fold()
	matched := []string{}
	for _, req := range required {
		reqFolded := fold.String(strings.TrimSpace(req))
		if reqFolded == "" {
			continue
		}
		for _, skill := range skills {
			name := fold.String(strings.TrimSpace(skill.Name))
			if name == "" {
				continue
			}
			if strings.Contains(name, reqFolded) || strings.Contains(reqFolded, name) {
				matched = append(matched, skill.Name)
				break
			}
		}
	}

	ratio := float64(len(matched)) / float64(len(required))
	return int(math.Round(SkillsWeight * ratio)), matched
}

// requiredSkills reads the posting's JSON skill list, falling back to its
// structured skill rows. Unparseable JSON yields nothing.
func requiredSkills(posting *models.JobPosting) []string {
	raw := strings.TrimSpace(posting.RequiredSkills)
	if raw == "" {
		names := make([]string, 0, len(posting.PostingSkills))
		for _, s := range posting.PostingSkills {
			names = append(names, s.Name)
		}
		return names
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		for _, key := range []string{"skill", "skill_name", "name"} {
			if v, ok := obj[key].(string); ok {
				names = append(names, v)
				break
			}
		}
	}
	return names
}

var leadingYears = regexp.MustCompile(`^\s*(\d+)\s*(?:-|–|\+|to\b|$)`)

// ParseMinimumYears extracts the leading integer of a seniority range such as "5-8 years".
func ParseMinimumYears(seniority string) (int, bool) {
	m := leadingYears.FindStringSubmatch(seniority)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchExperience pro-rates experience against the posting's minimum.
func matchExperience(seniority string, years int) int {
	minimum, ok := ParseMinimumYears(seniority)
	if !ok {
		if years >= 3 {
			return ExperienceWeight / 2
		}
		return 0
	}
	if years >= minimum {
		return ExperienceWeight
	}
	if years <= 0 {
		return 0
	}
	return int(float64(ExperienceWeight) * float64(years) / float64(minimum))
}

// matchSalary checks whether the two salary ranges overlap.
func matchSalary(posting *models.JobPosting, profile *models.JobProfile) int {
	postingMin, postingMax := bounds(posting.SalaryMin, posting.SalaryMax)
	profileMin, profileMax := bounds(profile.SalaryMin, profile.SalaryMax)

	if profileMin <= postingMax && profileMax >= postingMin {
		return SalaryWeight
	}
	if profileMin <= postingMax*1.2 {
		return SalaryWeight / 2
	}
	return 0
}

func bounds(lo, hi float64) (float64, float64) {
	if lo <= 0 {
		lo = 0
	}
	if hi <= 0 {
		hi = math.Inf(1)
	}
	return lo, hi
}

// matchLocation returns full credit on the first preference that fits.
func matchLocation(location string, prefs []models.LocationPreference) int {
	loc := strings.ToLower(location)
	postingRemote := strings.Contains(loc, "remote")

	for _, pref := range prefs {
		city := strings.ToLower(strings.TrimSpace(pref.City))
		state := strings.ToLower(strings.TrimSpace(pref.State))

		if postingRemote || strings.Contains(city, "remote") || strings.Contains(state, "remote") {
			return LocationWeight
		}
		if city != "" && strings.Contains(loc, city) {
			return LocationWeight
		}
		if state != "" && strings.Contains(loc, state) {
			return LocationWeight
		}
	}
	return 0
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
