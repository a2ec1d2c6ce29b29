package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Browse candidate job profiles",
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List job profiles",
	Example: `  talentmatch profile list
  talentmatch profile list --candidate-id 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		candidateID, _ := cmd.Flags().GetInt64("candidate-id")
		var profiles []models.JobProfile
		if candidateID != 0 {
			profiles, err = a.Store.ListCandidateProfiles(cmd.Context(), candidateID)
		} else {
			profiles, err = a.Store.ListProfiles(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("fetch profiles: %w", err)
		}

		if wantJSON(cmd) {
			return printJSON(profiles)
		}
		if len(profiles) == 0 {
			fmt.Println("No job profiles found. Load some with 'talentmatch import FILE'")
			return nil
		}

		fmt.Println(titleStyle.Render("Job Profiles"))
		for _, p := range profiles {
			fmt.Printf("\n%s %s\n", labelStyle.Render(fmt.Sprintf("#%d", p.ID)), p.ProfileName)
			fmt.Printf("   %s %s / %s / %s\n", labelStyle.Render("Product:"), p.ProductVendor, p.ProductType, p.JobRole)
			fmt.Printf("   %s %d years | %s %d\n", labelStyle.Render("Experience:"), p.YearsOfExperience,
				labelStyle.Render("Candidate:"), p.CandidateID)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Display a job profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		p, err := a.Store.GetProfile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		if wantJSON(cmd) {
			return printJSON(p)
		}

		fmt.Println(titleStyle.Render(p.ProfileName))
		fmt.Printf("%s %s\n", labelStyle.Render("Vendor:"), valueStyle.Render(p.ProductVendor))
		fmt.Printf("%s %s\n", labelStyle.Render("Product:"), valueStyle.Render(p.ProductType))
		fmt.Printf("%s %s\n", labelStyle.Render("Role:"), valueStyle.Render(p.JobRole))
		fmt.Printf("%s %d\n", labelStyle.Render("Years:"), p.YearsOfExperience)
		if p.WorkType != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Work Type:"), valueStyle.Render(string(p.WorkType)))
		}
		if p.SalaryMin > 0 || p.SalaryMax > 0 {
			fmt.Printf("%s %s\n", labelStyle.Render("Salary:"), salaryRange(p.SalaryMin, p.SalaryMax, p.SalaryCurrency))
		}

		if len(p.Skills) > 0 {
			fmt.Println(labelStyle.Render("\nSkills:"))
			for _, skill := range p.Skills {
				fmt.Printf("  • %s (%d/5, %s)\n", skill.Name, skill.Proficiency, skill.Category)
			}
		}

		if len(p.Locations) > 0 {
			fmt.Println(labelStyle.Render("\nPreferred Locations:"))
			for _, loc := range p.Locations {
				parts := []string{}
				for _, s := range []string{loc.City, loc.State, loc.Country} {
					if s != "" {
						parts = append(parts, s)
					}
				}
				fmt.Printf("  • %s\n", strings.Join(parts, ", "))
			}
		}
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func salaryRange(lo, hi float64, currency string) string {
	cur := strings.ToUpper(currency)
	switch {
	case lo > 0 && hi > 0:
		return fmt.Sprintf("%.0f-%.0f %s", lo, hi, cur)
	case lo > 0:
		return fmt.Sprintf("from %.0f %s", lo, cur)
	}
	return fmt.Sprintf("up to %.0f %s", hi, cur)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
}
