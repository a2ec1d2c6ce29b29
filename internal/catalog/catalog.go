// Package catalog holds the fixed vocabularies offered when describing
// skills and certifications.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Skill categories.
const (
	CategoryTechnical     = "technical"
	CategorySoft          = "soft"
	CategoryCertification = "certification"
)

//go:embed catalog.yaml
var raw []byte

// Catalogs is the sorted, read-only vocabulary table.
type Catalogs struct {
	TechnicalSkills []string `json:"technical_skills" yaml:"technical"`
	SoftSkills      []string `json:"soft_skills" yaml:"soft"`
	Certifications  []string `json:"certifications" yaml:"certifications"`
}

var (
	table  Catalogs
	byName map[string]string
)

func init() {
	c, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	table = c
	byName = make(map[string]string)
	for category, names := range map[string][]string{
		CategoryTechnical:     c.TechnicalSkills,
		CategorySoft:          c.SoftSkills,
		CategoryCertification: c.Certifications,
	} {
		for _, n := range names {
			byName[strings.ToLower(n)] = category
		}
	}
}

// Parse decodes a catalog document and sorts each list.
func Parse(data []byte) (Catalogs, error) {
	var c Catalogs
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalogs{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	slices.Sort(c.TechnicalSkills)
	slices.Sort(c.SoftSkills)
	slices.Sort(c.Certifications)
	return c, nil
}

// All returns a copy of the catalogs.
func All() Catalogs {
	return Catalogs{
		TechnicalSkills: slices.Clone(table.TechnicalSkills),
		SoftSkills:      slices.Clone(table.SoftSkills),
		Certifications:  slices.Clone(table.Certifications),
	}
}

// Category reports which list name belongs to, ignoring case.
func Category(name string) (string, bool) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
