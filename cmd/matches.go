package cmd

import (
	"fmt"

	"github.com/khrees2412/talentmatch/internal/app"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/spf13/cobra"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "View your matches",
	Long:  "List the caller's matches grouped by state, newest first",
	Example: `  talentmatch matches --as candidate --user-id 2 --candidate-id 1
  talentmatch matches --as recruiter --user-id 1 --company-id 1 --mutual`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		p, err := principalFrom(cmd)
		if err != nil {
			return err
		}
		mutual, _ := cmd.Flags().GetBool("mutual")

		matches, err := a.Service.ListMatches(cmd.Context(), p, mutual)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(matches)
		}
		if len(matches) == 0 {
			fmt.Println("No matches yet. Swipe on recommendations with 'talentmatch deck'")
			return nil
		}

		fmt.Println(titleStyle.Render("Your Matches"))

		// Group by state
		groups := map[models.MatchState][]models.Match{}
		for _, m := range matches {
			groups[m.State()] = append(groups[m.State()], m)
		}

		for _, state := range []models.MatchState{
			models.StateMutual, models.StateOneSidedCompany, models.StateOneSidedCandidate, models.StateNone,
		} {
			ms := groups[state]
			if len(ms) == 0 {
				continue
			}
			fmt.Printf("\n%s (%d)\n", labelStyle.Render(stateLabel(state, p.Role)), len(ms))
			for _, m := range ms {
				fmt.Printf("  • match %d: posting %d ↔ profile %d (%.0f%%%s)\n",
					m.ID, m.JobPostingID, m.JobProfileID, m.MatchPercentage, scoredSuffix(m))
				if m.CompanyAskedToApply {
					fmt.Println("    recruiter asked the candidate to apply")
				}
				if m.CandidateAskedToApply {
					fmt.Println("    candidate asked to apply")
				}
			}
		}

		fmt.Printf("\n%s %d\n", labelStyle.Render("Total Matches:"), len(matches))
		return nil
	},
}

func stateLabel(s models.MatchState, viewer models.Actor) string {
	switch s {
	case models.StateMutual:
		return "🤝 Mutual"
	case models.StateOneSidedCandidate:
		if viewer == models.ActorCandidate {
			return "👉 You liked"
		}
		return "👈 Candidate likes you"
	case models.StateOneSidedCompany:
		if viewer == models.ActorRecruiter {
			return "👉 You liked"
		}
		return "👈 Recruiter likes you"
	}
	return "📨 Invitations only"
}

func scoredSuffix(m models.Match) string {
	if m.Scored {
		return ""
	}
	return ", provisional"
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Act on an existing match",
}

var unlikeMatchCmd = &cobra.Command{
	Use:     "unlike <match-id>",
	Short:   "Withdraw your like from a match",
	Args:    cobra.ExactArgs(1),
	Example: `  talentmatch match unlike 4 --as candidate --user-id 2 --candidate-id 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, p, id, err := matchArgs(cmd, args)
		if err != nil {
			return err
		}
		m, err := a.Service.Unlike(cmd.Context(), p, id)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(m)
		}
		fmt.Printf("✓ Match %d is now %s\n", m.ID, m.State())
		return nil
	},
}

func matchActionCmd(use, short string, action models.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <match-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, p, id, err := matchArgs(cmd, args)
			if err != nil {
				return err
			}
			res, err := a.Service.ActOnMatch(cmd.Context(), p, id, action)
			if err != nil {
				return err
			}
			return printSwipeResult(cmd, res)
		},
	}
}

func matchArgs(cmd *cobra.Command, args []string) (*app.App, matching.Principal, int64, error) {
	a, err := appFrom(cmd)
	if err != nil {
		return nil, matching.Principal{}, 0, err
	}
	p, err := principalFrom(cmd)
	if err != nil {
		return nil, p, 0, err
	}
	id, err := parseID(args[0])
	return a, p, id, err
}

func printSwipeResult(cmd *cobra.Command, res *matching.SwipeResult) error {
	if wantJSON(cmd) {
		return printJSON(res)
	}
	if !res.Created {
		fmt.Println("Already recorded, nothing changed.")
		return nil
	}
	if res.Match == nil {
		fmt.Println("✓ Recorded.")
		return nil
	}
	fmt.Printf("✓ Match %d: %s\n", res.Match.ID, res.State)
	if res.State == models.StateMutual {
		fmt.Println(titleStyle.Render("It's a match!"))
	}
	if res.Notifications > 0 {
		fmt.Printf("  %d notification(s) sent\n", res.Notifications)
	}
	return nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View interest in your postings",
	Long:  "Summarise likes, invitations and mutual matches for the recruiter's team postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		p, err := principalFrom(cmd)
		if err != nil {
			return err
		}

		stats, err := a.Service.PostingStats(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}
		if wantJSON(cmd) {
			return printJSON(stats)
		}
		if len(stats) == 0 {
			fmt.Println("No postings yet.")
			return nil
		}

		sum := calculateStats(stats)

		fmt.Println(titleStyle.Render("Posting Statistics"))

		fmt.Printf("\n%s\n", labelStyle.Render("Overview"))
		fmt.Printf("  Postings: %d\n", len(stats))
		fmt.Printf("  Matches: %d\n", sum.Total)
		fmt.Printf("  Liked: %d\n", sum.Liked)
		fmt.Printf("  Invited: %d\n", sum.Asked)
		fmt.Printf("  Mutual: %d\n", sum.Mutual)
		if sum.Total > 0 {
			fmt.Printf("  Mutual Rate: %.1f%%\n", float64(sum.Mutual)/float64(sum.Total)*100)
		}

		fmt.Printf("\n%s\n", labelStyle.Render("Per Posting"))
		for _, s := range stats {
			fmt.Printf("  #%d %s: %d liked, %d invited, %d mutual of %d\n",
				s.JobPostingID, s.JobTitle, s.Liked, s.Asked, s.Mutual, s.Total)
		}
		return nil
	},
}

// calculateStats totals per-posting counts.
func calculateStats(stats []models.PostingStats) models.PostingStats {
	var sum models.PostingStats
	for _, s := range stats {
		sum.Liked += s.Liked
		sum.Asked += s.Asked
		sum.Mutual += s.Mutual
		sum.Total += s.Total
	}
	return sum
}

func init() {
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(statsCmd)
	matchCmd.AddCommand(unlikeMatchCmd)
	matchCmd.AddCommand(matchActionCmd("like", "Like a match again", models.ActionLike))
	matchCmd.AddCommand(matchActionCmd("ask", "Ask the candidate to apply (recruiters)", models.ActionAskToApply))

	matchesCmd.Flags().Bool("mutual", false, "only show mutual matches")
}
