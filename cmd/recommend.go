package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Ranked recommendations",
}

var recommendPostingsCmd = &cobra.Command{
	Use:     "postings <profile-id>",
	Short:   "Rank active postings for one of your job profiles",
	Args:    cobra.ExactArgs(1),
	Example: `  talentmatch recommend postings 3 --as candidate --user-id 2 --candidate-id 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecommend(cmd, args[0], models.ActorCandidate)
	},
}

var recommendProfilesCmd = &cobra.Command{
	Use:     "profiles <posting-id>",
	Short:   "Rank candidate profiles for one of your postings",
	Args:    cobra.ExactArgs(1),
	Example: `  talentmatch recommend profiles 7 --as recruiter --user-id 1 --company-id 1 --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecommend(cmd, args[0], models.ActorRecruiter)
	},
}

func runRecommend(cmd *cobra.Command, arg string, side models.Actor) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	p, err := principalFrom(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	recs, err := recommendations(cmd, a.Service, p, id, side)
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return printJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Println("No recommendations above the score threshold.")
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Top %d Recommendations", len(recs))))
	for i, r := range recs {
		fmt.Printf("\n%d. %s %s\n", i+1, describe(r, side), scoreStyle(r.Score))
		fmt.Printf("   %s\n", breakdownLine(r.Breakdown))
		if status := annotationLine(r.Annotation); status != "" {
			fmt.Printf("   %s\n", status)
		}
	}
	return nil
}

// recommendations ranks for the given side and applies --limit.
func recommendations(cmd *cobra.Command, svc *matching.Service, p matching.Principal, id int64, side models.Actor) ([]matcher.Recommendation, error) {
	var (
		recs []matcher.Recommendation
		err  error
	)
	if side == models.ActorRecruiter {
		recs, err = svc.RecommendProfiles(cmd.Context(), p, id)
	} else {
		recs, err = svc.RecommendPostings(cmd.Context(), p, id)
	}
	if err != nil {
		return nil, err
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// describe names the other side of the pair.
func describe(r matcher.Recommendation, side models.Actor) string {
	if side == models.ActorRecruiter {
		return fmt.Sprintf("%s (profile %d, %d yrs)", r.Profile.ProfileName, r.Profile.ID, r.Profile.YearsOfExperience)
	}
	return fmt.Sprintf("%s (posting %d, %s %s)", r.Posting.JobTitle, r.Posting.ID, r.Posting.ProductVendor, r.Posting.ProductType)
}

func scoreStyle(score int) string {
	return valueStyle.Render(fmt.Sprintf("%d%%", score))
}

func breakdownLine(b matcher.Breakdown) string {
	line := fmt.Sprintf("product %d · skills %d · experience %d · salary %d · location %d",
		b.Product, b.Skills, b.Experience, b.Salary, b.Location)
	if b.Bonus > 0 {
		line += fmt.Sprintf(" · bonus %d", b.Bonus)
	}
	if len(b.MatchedSkills) > 0 {
		line += "\n   matched: " + strings.Join(b.MatchedSkills, ", ")
	}
	return line
}

func annotationLine(a matcher.Annotation) string {
	var parts []string
	if a.AlreadySwiped {
		parts = append(parts, "you swiped "+string(a.SwipeAction))
	}
	if a.IsMutual {
		parts = append(parts, "mutual match")
	} else if a.AlreadyMatched {
		parts = append(parts, fmt.Sprintf("match %d", a.MatchID))
	}
	if a.RecruiterInterested {
		parts = append(parts, "recruiter interested")
	}
	if a.RecruiterInvited {
		parts = append(parts, "invited to apply")
	}
	return strings.Join(parts, " · ")
}

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Swipe through recommendations interactively",
	Long: `Walk through ranked recommendations one at a time and like, pass or
(as a recruiter) ask the candidate to apply. Pairs you already swiped are skipped.`,
	Example: `  talentmatch deck --profile 3 --as candidate --user-id 2 --candidate-id 1
  talentmatch deck --posting 7 --as recruiter --user-id 1 --company-id 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		p, err := principalFrom(cmd)
		if err != nil {
			return err
		}

		id, _ := cmd.Flags().GetInt64("profile")
		if p.Role == models.ActorRecruiter {
			id, _ = cmd.Flags().GetInt64("posting")
		}
		if id == 0 {
			return fmt.Errorf("--profile (candidates) or --posting (recruiters) is required")
		}

		recs, err := recommendations(cmd, a.Service, p, id, p.Role)
		if err != nil {
			return err
		}
		return runDeck(cmd, a.Service, p, recs, bufio.NewReader(cmd.InOrStdin()))
	},
}

func runDeck(cmd *cobra.Command, svc *matching.Service, p matching.Principal, recs []matcher.Recommendation, reader *bufio.Reader) error {
	options := "[l]ike  [p]ass  [q]uit"
	if p.Role == models.ActorRecruiter {
		options = "[l]ike  [a]sk to apply  [p]ass  [q]uit"
	}

	shown := 0
	for _, r := range recs {
		if r.AlreadySwiped {
			continue
		}
		shown++

		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Printf("%s %s\n", titleStyle.Render(describe(r, p.Role)), scoreStyle(r.Score))
		fmt.Printf("%s\n", breakdownLine(r.Breakdown))
		if status := annotationLine(r.Annotation); status != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("Status:"), status)
		}
		fmt.Printf("\n%s\n> ", options)

		input, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		choice := strings.TrimSpace(strings.ToLower(input))

		var action models.Action
		switch choice {
		case "l":
			action = models.ActionLike
		case "p":
			action = models.ActionPass
		case "a":
			action = models.ActionAskToApply
		case "q":
			return nil
		default:
			if err == io.EOF {
				return nil
			}
			fmt.Println("Skipped.")
			continue
		}

		res, err := svc.RecordSwipe(cmd.Context(), p, matching.SwipeRequest{
			CandidateID:  r.Profile.CandidateID,
			JobProfileID: r.Profile.ID,
			JobPostingID: r.Posting.ID,
			Action:       action,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if err := printSwipeResult(cmd, res); err != nil {
			return err
		}
	}

	if shown == 0 {
		fmt.Println("Nothing new to swipe on.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(deckCmd)
	recommendCmd.AddCommand(recommendPostingsCmd)
	recommendCmd.AddCommand(recommendProfilesCmd)

	recommendCmd.PersistentFlags().Int("limit", 20, "maximum recommendations to show")
	deckCmd.Flags().Int("limit", 0, "maximum recommendations to walk through")
	deckCmd.Flags().Int64("profile", 0, "your job profile id (candidates)")
	deckCmd.Flags().Int64("posting", 0, "your job posting id (recruiters)")
}
