package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/internal/optimizer"
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/iwvelando/project-finance/pkg/optimization"
	"github.com/iwvelando/project-finance/pkg/output"
	"github.com/spf13/cobra"
)

type breakEvenOptions struct {
	component    string
	metric       string
	target       float64
	max          float64
	outputFormat string
	currency     string
}

func newBreakEvenCmd(opts *rootOptions) *cobra.Command {
	be := &breakEvenOptions{}

	cmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Solve the annual revenue at which a component reaches a target IRR",
		Long: "Bisects one component's annual revenue until the selected IRR (project, equityPreTax " +
			"or equityPostTax) meets the target. Without --component every directive in the " +
			"configuration's breakEven list is solved.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var directives []config.BreakEvenConfig
			if be.component != "" {
				directive := config.BreakEvenConfig{Component: be.component, Metric: be.metric}
				if cmd.Flags().Changed("target") {
					directive.Target = &be.target
				}
				if cmd.Flags().Changed("max") {
					directive.Max = &be.max
				}
				directives = append(directives, directive)
			}
			return s.breakEven(cmd.OutOrStdout(), directives, be.outputFormat, be.currency)
		},
	}
	cmd.Flags().StringVar(&be.component, "component", "", "component to solve, e.g. A")
	cmd.Flags().StringVar(&be.metric, "metric", config.BreakEvenMetricProject, "IRR to hold at the target: project, equityPreTax, equityPostTax")
	cmd.Flags().Float64Var(&be.target, "target", 0, "target IRR as a decimal (defaults to the discount rate)")
	cmd.Flags().Float64Var(&be.max, "max", 0, "upper bound of the annual revenue search")
	cmd.Flags().StringVar(&be.outputFormat, "output-format", constants.OutputFormatPretty, "type of output: pretty, json")
	cmd.Flags().StringVar(&be.currency, "currency", "", "display currency override: USD, MXN")
	return cmd
}

// breakEven solves directives, or the configuration's own list when
// directives is empty.
func (s *session) breakEven(w io.Writer, directives []config.BreakEvenConfig, outputFormat, currency string) error {
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatJSON {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatJSON, outputFormat)
	}

	if len(directives) > 0 {
		s.conf.BreakEven = directives
	}
	s.warn()
	if len(s.conf.BreakEven) == 0 {
		return fmt.Errorf("no break-even directive: pass --component or add a breakEven section")
	}

	fx, err := s.presenter(currency)
	if err != nil {
		return err
	}

	runner, err := optimizer.NewRunner(s.logger, s.conf)
	if err != nil {
		return err
	}
	result, err := runner.Run()
	if err != nil {
		return err
	}

	if outputFormat == constants.OutputFormatJSON {
		return writeSummariesJSON(w, result.Summaries)
	}
	output.WriteBreakEven(w, fx, result.Summaries)
	return nil
}

func writeSummariesJSON(w io.Writer, summaries []optimization.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
