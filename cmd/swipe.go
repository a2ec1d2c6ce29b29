package cmd

import (
	"fmt"

	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/spf13/cobra"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Like, pass or ask to apply on a posting/profile pair",
	Example: `  talentmatch swipe --posting 7 --profile 3 --action like --as candidate --user-id 2 --candidate-id 1
  talentmatch swipe --posting 7 --profile 3 --action ask_to_apply --as recruiter --user-id 1 --company-id 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		p, err := principalFrom(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		postingID, _ := flags.GetInt64("posting")
		profileID, _ := flags.GetInt64("profile")
		candidateID, _ := flags.GetInt64("candidate")
		action, _ := flags.GetString("action")

		res, err := a.Service.RecordSwipe(cmd.Context(), p, matching.SwipeRequest{
			CandidateID:  candidateID,
			JobProfileID: profileID,
			JobPostingID: postingID,
			Action:       models.Action(action),
		})
		if err != nil {
			return err
		}
		return printSwipeResult(cmd, res)
	},
}

var scoreCmd = &cobra.Command{
	Use:     "score",
	Short:   "Score a posting against a job profile",
	Example: `  talentmatch score --posting 7 --profile 3 --view candidate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		postingID, _ := flags.GetInt64("posting")
		profileID, _ := flags.GetInt64("profile")
		viewName, _ := flags.GetString("view")

		var view matcher.View
		switch viewName {
		case matcher.RecruiterView.Name:
			view = matcher.RecruiterView
		case matcher.CandidateView.Name:
			view = matcher.CandidateView
		default:
			return fmt.Errorf("--view must be %q or %q", matcher.RecruiterView.Name, matcher.CandidateView.Name)
		}

		res, err := a.Service.ScorePair(cmd.Context(), postingID, profileID, view)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(res)
		}

		fmt.Println(titleStyle.Render("Match Score"))
		fmt.Printf("%s %s\n", labelStyle.Render("Score:"), scoreStyle(res.Total))
		fmt.Printf("%s %s\n", labelStyle.Render("View:"), view.Name)
		fmt.Printf("%s\n", breakdownLine(res.Breakdown))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	rootCmd.AddCommand(scoreCmd)

	swipeCmd.Flags().Int64("posting", 0, "job posting id")
	swipeCmd.Flags().Int64("profile", 0, "job profile id")
	swipeCmd.Flags().Int64("candidate", 0, "candidate id the profile belongs to (recruiters, optional)")
	swipeCmd.Flags().String("action", string(models.ActionLike), "like, pass or ask_to_apply")
	swipeCmd.MarkFlagRequired("posting")
	swipeCmd.MarkFlagRequired("profile")

	scoreCmd.Flags().Int64("posting", 0, "job posting id")
	scoreCmd.Flags().Int64("profile", 0, "job profile id")
	scoreCmd.Flags().String("view", matcher.RecruiterView.Name, "recruiter or candidate")
	scoreCmd.MarkFlagRequired("posting")
	scoreCmd.MarkFlagRequired("profile")
}
