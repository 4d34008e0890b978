package main

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/project-finance/internal/forecast"
	"github.com/iwvelando/project-finance/internal/optimizer"
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/iwvelando/project-finance/pkg/format"
	"github.com/iwvelando/project-finance/pkg/optimization"
	"github.com/iwvelando/project-finance/pkg/output"
	"github.com/iwvelando/project-finance/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	var outputFormat, currency, fromSnapshot string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Project every component and the combined view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if fromSnapshot != "" {
				err = s.restore(cmd.Context(), fromSnapshot)
			} else {
				err = s.restoreDefaults(cmd.Context())
			}
			if err != nil {
				return err
			}
			return s.evaluate(cmd.OutOrStdout(), outputFormat, currency)
		},
	}
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().StringVar(&currency, "currency", "", "display currency override: USD, MXN")
	cmd.Flags().StringVar(&fromSnapshot, "from-snapshot", "", "evaluate a stored snapshot instead of the configuration file")
	return cmd
}

// presenter resolves the display currency, CLI override first.
func (s *session) presenter(currencyOverride string) (format.FXPresenter, error) {
	currency := s.conf.Output.Currency
	if currencyOverride != "" {
		currency = currencyOverride
	}
	if err := validation.ValidateCurrency(currency); err != nil {
		return format.FXPresenter{}, err
	}
	return format.NewFXPresenter(currency, s.conf.Common.FXRate)
}

func (s *session) evaluate(w io.Writer, formatOverride, currencyOverride string) error {
	// CLI override takes precedence over config
	outputFormat := s.conf.Output.Format
	if formatOverride != "" {
		outputFormat = formatOverride
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	s.warn()

	fx, err := s.presenter(currencyOverride)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := forecast.GetForecast(s.logger, *s.conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}

	var summaries []optimization.Summary
	if len(s.conf.BreakEven) > 0 {
		runner, err := optimizer.NewRunner(s.logger, s.conf)
		if err != nil {
			return err
		}
		result, err := runner.Run()
		if err != nil {
			return fmt.Errorf("failed to solve break-even directives: %w", err)
		}
		summaries = result.Summaries
	}

	s.logger.Info("evaluated configuration",
		zap.String("op", "main.evaluate"),
		zap.Int("components", len(results.Components)),
		zap.Int("breakEven", len(summaries)),
		zap.Duration("duration", time.Since(start)),
	)

	switch outputFormat {
	case constants.OutputFormatCSV:
		return output.WriteCSV(w, results, fx)
	case constants.OutputFormatJSON:
		return output.WriteJSON(w, results, fx, summaries)
	default:
		output.WritePretty(w, results, fx, summaries)
		return nil
	}
}
