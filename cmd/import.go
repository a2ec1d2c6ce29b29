package cmd

import (
	"fmt"
	"os"

	"github.com/khrees2412/talentmatch/internal/seed"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import companies, candidates, postings and profiles",
	Long: `Import a YAML fixture. Entries reference each other by "ref"; every
row is created fresh, so importing the same file twice duplicates it.`,
	Args:    cobra.ExactArgs(1),
	Example: `  talentmatch import ./marketplace.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open fixture: %w", err)
		}
		defer f.Close()

		fixture, err := seed.Load(f)
		if err != nil {
			return err
		}
		sum, err := seed.Apply(cmd.Context(), a.Store, fixture)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(sum)
		}

		fmt.Println("✓ Import complete")
		fmt.Printf("  %s %d\n", labelStyle.Render("Companies:"), sum.Companies)
		fmt.Printf("  %s %d\n", labelStyle.Render("Candidates:"), sum.Candidates)
		fmt.Printf("  %s %d\n", labelStyle.Render("Postings:"), sum.Postings)
		fmt.Printf("  %s %d\n", labelStyle.Render("Profiles:"), sum.Profiles)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
