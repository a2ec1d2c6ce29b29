// Package seed loads companies, candidates, postings and profiles from a
// YAML fixture file.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/khrees2412/talentmatch/internal/catalog"
	"github.com/khrees2412/talentmatch/pkg/models"
	"go.yaml.in/yaml/v3"
)

// Store creates seeded records.
type Store interface {
	CreateCompany(ctx context.Context, c *models.Company) error
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	CreatePosting(ctx context.Context, p *models.JobPosting) error
	CreateProfile(ctx context.Context, p *models.JobProfile) error
}

// Fixture is the document layout. Postings and profiles point at their
// owner by ref.
//
//	companies:
//	  - ref: acme
//	    user_id: 1
//	    company_name: Acme
//	postings:
//	  - company: acme
//	    job_title: Fusion Consultant
//	    required: [General Ledger, OTBI]
type Fixture struct {
	Companies  []Company   `yaml:"companies"`
	Candidates []Candidate `yaml:"candidates"`
	Postings   []Posting   `yaml:"postings"`
	Profiles   []Profile   `yaml:"profiles"`
}

type Company struct {
	Ref            string `yaml:"ref"`
	models.Company `yaml:",inline"`
}

type Candidate struct {
	Ref              string `yaml:"ref"`
	models.Candidate `yaml:",inline"`
}

type Posting struct {
	Company string `yaml:"company"`
	// Required is stored as the posting's JSON required_skills list.
	Required          []string `yaml:"required"`
	Inactive          bool     `yaml:"inactive"`
	models.JobPosting `yaml:",inline"`
}

type Profile struct {
	Candidate         string `yaml:"candidate"`
	models.JobProfile `yaml:",inline"`
}

// Summary counts what Apply created.
type Summary struct {
	Companies  int
	Candidates int
	Postings   int
	Profiles   int
}

var errUnknownRef = errors.New("unknown ref")

// Load decodes a fixture, rejecting unknown keys.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// Apply creates every record of f in order. It stops at the first error;
// records created before it are kept.
func Apply(ctx context.Context, store Store, f *Fixture) (Summary, error) {
	var sum Summary
	companies := make(map[string]int64)
	candidates := make(map[string]int64)

	for i := range f.Companies {
		c := &f.Companies[i]
		if err := store.CreateCompany(ctx, &c.Company); err != nil {
			return sum, fmt.Errorf("company %q: %w", c.CompanyName, err)
		}
		if c.Ref != "" {
			companies[c.Ref] = c.ID
		}
		sum.Companies++
	}

	for i := range f.Candidates {
		c := &f.Candidates[i]
		if err := store.CreateCandidate(ctx, &c.Candidate); err != nil {
			return sum, fmt.Errorf("candidate %q: %w", c.Name, err)
		}
		if c.Ref != "" {
			candidates[c.Ref] = c.ID
		}
		sum.Candidates++
	}

	for i := range f.Postings {
		p := &f.Postings[i]
		id, ok := companies[p.Company]
		if !ok {
			return sum, fmt.Errorf("posting %q: company %q: %w", p.JobTitle, p.Company, errUnknownRef)
		}
		p.CompanyID = id
		p.IsActive = !p.Inactive
		if len(p.Required) > 0 {
			raw, err := json.Marshal(p.Required)
			if err != nil {
				return sum, err
			}
			p.RequiredSkills = string(raw)
		}
		for j := range p.PostingSkills {
			p.PostingSkills[j].Category = category(p.PostingSkills[j].Name, p.PostingSkills[j].Category)
		}
		if err := store.CreatePosting(ctx, &p.JobPosting); err != nil {
			return sum, fmt.Errorf("posting %q: %w", p.JobTitle, err)
		}
		sum.Postings++
	}

	for i := range f.Profiles {
		p := &f.Profiles[i]
		id, ok := candidates[p.Candidate]
		if !ok {
			return sum, fmt.Errorf("profile %q: candidate %q: %w", p.ProfileName, p.Candidate, errUnknownRef)
		}
		p.CandidateID = id
		for j := range p.Skills {
			p.Skills[j].Category = category(p.Skills[j].Name, p.Skills[j].Category)
		}
		if err := store.CreateProfile(ctx, &p.JobProfile); err != nil {
			return sum, fmt.Errorf("profile %q: %w", p.ProfileName, err)
		}
		sum.Profiles++
	}

	return sum, nil
}

// category fills an empty skill category from the catalogs.
func category(name, given string) string {
	if given != "" {
		return given
	}
	if c, ok := catalog.Category(name); ok {
		return c
	}
	return catalog.CategoryTechnical
}
