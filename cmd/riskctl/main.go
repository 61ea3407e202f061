package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskwatch/platform/pkg/assessment"
	"github.com/riskwatch/platform/pkg/common/config"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/patientapi"
	"github.com/riskwatch/platform/pkg/scoring"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "riskwatch",
		Short: "Patient risk assessment tool",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scoreCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all patients, classify them and optionally submit the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			maxPages, _ := cmd.Flags().GetInt("max-pages")
			submit, _ := cmd.Flags().GetBool("submit")

			logger.Init("riskctl")
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client, err := patientapi.New(patientapi.ConfigFrom(cfg))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, closeDeps, err := assessment.Setup(ctx, cfg, client)
			if err != nil {
				return err
			}
			defer closeDeps()

			run, runErr := svc.Run(ctx, assessment.Request{
				Limit:       limit,
				MaxPages:    maxPages,
				Submit:      submit,
				RequestedBy: "riskctl",
			})
			if run != nil {
				if err := printJSON(cmd, run); err != nil {
					return err
				}
				if run.Partial() {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: stopped after %d of %d pages\n", run.PagesFetched, run.TotalPages)
				}
			}
			return runErr
		},
	}
	cmd.Flags().Int("limit", 5, "Patients per page (1-20)")
	cmd.Flags().Int("max-pages", 10, "Maximum number of pages to fetch")
	cmd.Flags().Bool("submit", false, "Submit the alert lists to the remote API")
	return cmd
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single set of vitals",
		RunE: func(cmd *cobra.Command, args []string) error {
			systolic, _ := cmd.Flags().GetString("systolic")
			diastolic, _ := cmd.Flags().GetString("diastolic")
			temperature, _ := cmd.Flags().GetString("temperature")
			age, _ := cmd.Flags().GetString("age")

			result := scoring.ScoreVitals(scoring.VitalsInput{
				Systolic:    systolic,
				Diastolic:   diastolic,
				Temperature: temperature,
				Age:         age,
			})
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().String("systolic", "", "Systolic pressure (mmHg)")
	cmd.Flags().String("diastolic", "", "Diastolic pressure (mmHg)")
	cmd.Flags().String("temperature", "", "Body temperature (°F)")
	cmd.Flags().String("age", "", "Age in years")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
