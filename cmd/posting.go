package cmd

import (
	"fmt"

	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/spf13/cobra"
)

var postingCmd = &cobra.Command{
	Use:   "posting",
	Short: "Browse job postings",
}

var listPostingsCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	Example: `  talentmatch posting list
  talentmatch posting list --company-id 2 --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		filter := matching.PostingFilter{ActiveOnly: !all}
		if companyID, _ := cmd.Flags().GetInt64("company-id"); companyID != 0 {
			ids, err := a.Store.TeamCompanyIDs(cmd.Context(), companyID)
			if err != nil {
				return fmt.Errorf("team companies: %w", err)
			}
			filter.CompanyIDs = ids
		}

		postings, err := a.Store.ListPostings(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("fetch postings: %w", err)
		}

		if wantJSON(cmd) {
			return printJSON(postings)
		}
		if len(postings) == 0 {
			fmt.Println("No job postings found. Load some with 'talentmatch import FILE'")
			return nil
		}

		fmt.Println(titleStyle.Render("Job Postings"))
		for _, p := range postings {
			fmt.Printf("\n%s %s\n", labelStyle.Render(fmt.Sprintf("#%d", p.ID)), p.JobTitle)
			fmt.Printf("   %s %s / %s / %s\n", labelStyle.Render("Product:"), p.ProductVendor, p.ProductType, p.JobRole)
			if p.Location != "" {
				fmt.Printf("   %s %s\n", labelStyle.Render("Location:"), p.Location)
			}
			if !p.IsActive {
				fmt.Printf("   %s\n", labelStyle.Render("(inactive)"))
			}
		}
		return nil
	},
}

var showPostingCmd = &cobra.Command{
	Use:   "show <posting-id>",
	Short: "Display a job posting",
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

		p, err := a.Store.GetPosting(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch posting: %w", err)
		}
		if wantJSON(cmd) {
			return printJSON(p)
		}

		fmt.Println(titleStyle.Render(p.JobTitle))
		fmt.Printf("%s %d\n", labelStyle.Render("Company:"), p.CompanyID)
		fmt.Printf("%s %s\n", labelStyle.Render("Vendor:"), valueStyle.Render(p.ProductVendor))
		fmt.Printf("%s %s\n", labelStyle.Render("Product:"), valueStyle.Render(p.ProductType))
		fmt.Printf("%s %s\n", labelStyle.Render("Role:"), valueStyle.Render(p.JobRole))
		if p.SeniorityLevel != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Seniority:"), valueStyle.Render(p.SeniorityLevel))
		}
		if p.WorkType != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Work Type:"), valueStyle.Render(string(p.WorkType)))
		}
		if p.Location != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Location:"), valueStyle.Render(p.Location))
		}
		if p.SalaryMin > 0 || p.SalaryMax > 0 {
			fmt.Printf("%s %s\n", labelStyle.Render("Salary:"), salaryRange(p.SalaryMin, p.SalaryMax, p.SalaryCurrency))
		}
		if p.RequiredSkills != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Required Skills:"), p.RequiredSkills)
		}
		if len(p.PostingSkills) > 0 {
			fmt.Println(labelStyle.Render("\nSkills:"))
			for _, s := range p.PostingSkills {
				fmt.Printf("  • %s (%s)\n", s.Name, s.Category)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postingCmd)
	postingCmd.AddCommand(listPostingsCmd)
	postingCmd.AddCommand(showPostingCmd)

	listPostingsCmd.Flags().Bool("all", false, "include inactive postings")
}
