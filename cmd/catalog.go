package cmd

import (
	"fmt"
	"strings"

	"github.com/khrees2412/talentmatch/internal/catalog"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [technical|soft|certification]",
	Short: "List the skill catalogs",
	Long:  "List the technical skills, soft skills and certifications offered to profiles and postings",
	Args:  cobra.MaximumNArgs(1),
	Example: `  talentmatch catalog
  talentmatch catalog soft`,
	Annotations: map[string]string{configOnly: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		all := catalog.All()
		if wantJSON(cmd) {
			return printJSON(all)
		}

		sections := []struct {
			category string
			title    string
			names    []string
		}{
			{catalog.CategoryTechnical, "Technical Skills", all.TechnicalSkills},
			{catalog.CategorySoft, "Soft Skills", all.SoftSkills},
			{catalog.CategoryCertification, "Certifications", all.Certifications},
		}

		found := false
		for _, s := range sections {
			if len(args) == 1 && args[0] != s.category {
				continue
			}
			found = true
			fmt.Printf("%s (%d)\n", titleStyle.Render(s.title), len(s.names))
			for _, name := range s.names {
				fmt.Printf("  • %s\n", name)
			}
			fmt.Println()
		}
		if !found {
			return fmt.Errorf("unknown category %q", args[0])
		}
		return nil
	},
}

var lookupSkillCmd = &cobra.Command{
	Use:         "lookup <skill-name>",
	Short:       "Show which catalog a skill belongs to",
	Args:        cobra.MinimumNArgs(1),
	Example:     `  talentmatch catalog lookup "SAP ABAP"`,
	Annotations: map[string]string{configOnly: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		category, ok := catalog.Category(name)
		if !ok {
			fmt.Printf("%s is not in any catalog\n", name)
			return nil
		}
		fmt.Printf("%s %s\n", labelStyle.Render(name+":"), valueStyle.Render(category))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(lookupSkillCmd)
}
