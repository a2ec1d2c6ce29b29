package cmd

import (
	"fmt"

	"github.com/khrees2412/talentmatch/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage configuration",
	Long:        "View and update configuration settings",
	Annotations: map[string]string{configOnly: "true"},
}

var showConfigCmd = &cobra.Command{
	Use:         "show",
	Short:       "Display current configuration",
	Annotations: map[string]string{configOnly: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		c := config.AppConfig
		fmt.Println(titleStyle.Render("Configuration"))
		fmt.Printf("%s %s\n", labelStyle.Render("Config File:"), config.GetConfigPath())
		fmt.Printf("%s %s\n", labelStyle.Render("Database Driver:"), c.DatabaseDriver)
		if c.DatabaseDriver == config.DriverPostgres {
			fmt.Printf("%s %s\n", labelStyle.Render("Database URL:"), configured(c.DatabaseURL))
		} else {
			fmt.Printf("%s %s\n", labelStyle.Render("Database Path:"), c.DatabasePath)
		}
		fmt.Printf("%s %s\n", labelStyle.Render("Redis:"), configured(c.RedisURL))
		fmt.Printf("%s %s\n", labelStyle.Render("Notify Channel:"), c.NotifyChannel)
		fmt.Printf("%s %d\n", labelStyle.Render("Min Score:"), c.MinScore)
		fmt.Printf("%s %d\n", labelStyle.Render("Score Workers:"), c.ScoreWorkers)
		fmt.Printf("%s %s (batch %d)\n", labelStyle.Render("Rescore Schedule:"), c.RescoreSchedule, c.RescoreBatch)
		fmt.Printf("%s %s\n", labelStyle.Render("HTTP Address:"), c.HTTPAddr)
	},
}

// configured hides connection strings that may carry credentials.
func configured(v string) string {
	if v != "" {
		return "✓ Configured"
	}
	return "✗ Not configured"
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  talentmatch config set --key database_driver --value postgres
  talentmatch config set --key database_url --value postgres://localhost:5432/talentmatch
  talentmatch config set --key redis_url --value redis://localhost:6379/0
  talentmatch config set --key min_score --value 50`,
	Annotations: map[string]string{configOnly: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" || value == "" {
			return fmt.Errorf("both --key and --value are required")
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("%w (valid keys: %v)", err, config.Keys())
		}

		fmt.Printf("✓ Configuration updated: %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	// Flags for set command
	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
