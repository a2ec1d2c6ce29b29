package catalog

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsSortedAndPopulated(t *testing.T) {
	c := All()
	for name, list := range map[string][]string{
		"technical":      c.TechnicalSkills,
		"soft":           c.SoftSkills,
		"certifications": c.Certifications,
	} {
		assert.NotEmpty(t, list, name)
		assert.True(t, slices.IsSorted(list), "%s not sorted", name)
	}
	assert.Contains(t, c.TechnicalSkills, "Oracle Fusion")
	assert.Contains(t, c.Certifications, "PMP")
}

func TestAllReturnsCopy(t *testing.T) {
	c := All()
	c.SoftSkills[0] = "mutated"
	assert.NotEqual(t, "mutated", All().SoftSkills[0])
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"kubernetes", CategoryTechnical, true},
		{"  Leadership ", CategorySoft, true},
		{"CISSP", CategoryCertification, true},
		{"Basket Weaving", "", false},
	}
	for _, tt := range tests {
		got, ok := Category(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("technical: [Go, Ada]\nsoft: []\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Go"}, c.TechnicalSkills)

	_, err = Parse([]byte("technical: {"))
	assert.Error(t, err)
}
