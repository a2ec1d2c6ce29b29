package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khrees2412/talentmatch/internal/app"
	"github.com/khrees2412/talentmatch/internal/config"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configOnly marks commands that need configuration but no database.
const configOnly = "config-only"

var application *app.App

var rootCmd = &cobra.Command{
	Use:   "talentmatch",
	Short: "Two-sided job marketplace matcher",
	Long: `TalentMatch scores job postings against candidate job profiles, records
likes and passes from both sides, and turns mutual interest into matches.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[configOnly] == "true" {
			return config.Initialize()
		}

		// Initialize app with all dependencies
		a, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		application = a

		// Store app in command context
		cmd.SetContext(app.SetAppInContext(cmd.Context(), a))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	// Cleanup: close app resources
	if application != nil {
		application.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("json-logs", false, "write logs as JSON")
	viper.BindPFlag("log_debug", flags.Lookup("debug"))
	viper.BindPFlag("log_json", flags.Lookup("json-logs"))

	// Identity of the caller. A gateway supplies these over HTTP.
	flags.String("as", "", "act as: candidate or recruiter")
	flags.Int64("user-id", 0, "user id of the caller")
	flags.Int64("candidate-id", 0, "candidate id (with --as candidate)")
	flags.Int64("company-id", 0, "company id (with --as recruiter)")
	flags.Bool("json", false, "print results as JSON")
}

// appFrom returns the App initialized for cmd.
func appFrom(cmd *cobra.Command) (*app.App, error) {
	return app.FromContext(cmd.Context())
}

// principalFrom builds the caller from the identity flags.
func principalFrom(cmd *cobra.Command) (matching.Principal, error) {
	flags := cmd.Flags()
	as, _ := flags.GetString("as")
	userID, _ := flags.GetInt64("user-id")
	candidateID, _ := flags.GetInt64("candidate-id")
	companyID, _ := flags.GetInt64("company-id")

	p := matching.Principal{UserID: userID, Role: models.Actor(as), CandidateID: candidateID, CompanyID: companyID}
	switch p.Role {
	case models.ActorCandidate:
		if candidateID == 0 {
			return p, fmt.Errorf("--candidate-id is required with --as candidate")
		}
	case models.ActorRecruiter:
		if companyID == 0 {
			return p, fmt.Errorf("--company-id is required with --as recruiter")
		}
	default:
		return p, fmt.Errorf("--as must be %q or %q", models.ActorCandidate, models.ActorRecruiter)
	}
	return p, nil
}

// wantJSON reports whether --json was given.
func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
