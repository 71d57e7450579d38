package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reel/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("External tools", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			allAvailable := true
			for _, status := range statuses {
				kind := statusOK
				message := status.Command
				if !status.Available {
					kind = statusError
					message = status.Detail
					allAvailable = false
					if status.Optional {
						kind = statusWarn
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			rows := [][]string{
				{"Log directory", cfg.Paths.LogDir},
				{"Log format", cfg.Logging.Format},
				{"Log level", cfg.Logging.Level},
				{"Progress poll", fmt.Sprintf("%d ms", cfg.Encoding.ProgressPollMillis)},
				{"Stderr tail", fmt.Sprintf("%d lines", cfg.Encoding.StderrTailLines)},
				{"CRF encoders", fmt.Sprintf("%d configured", len(cfg.Encoding.CRFEncoders))},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))

			fmt.Fprintf(out, "All tools available: %s\n", yesNo(allAvailable))
			return nil
		},
	}
}
