package cmd

import (
	"github.com/khrees2412/talentmatch/internal/api"
	"github.com/khrees2412/talentmatch/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the rescoring job",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		cfg := a.Config
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		if noRescore, _ := cmd.Flags().GetBool("no-rescore"); !noRescore {
			sched := scheduler.New(a.Service, cfg.RescoreSchedule, cfg.RescoreBatch, a.Logger)
			if err := sched.Start(cmd.Context()); err != nil {
				return err
			}
			defer sched.Stop()
		}

		a.Logger.Info("starting talentmatch",
			zap.String("driver", cfg.DatabaseDriver),
			zap.Bool("redis", a.Redis != nil),
		)
		return api.New(a.Service, a.Logger, cfg.CORSOrigins).Run(cmd.Context(), cfg.HTTPAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides http_addr)")
	serveCmd.Flags().Bool("no-rescore", false, "disable the background rescoring job")
}
