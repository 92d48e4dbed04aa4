package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gosus/adapters/excel"
	"gosus/adapters/stats/primitives"
	"gosus/domain/core"
	"gosus/domain/sus"
	"gosus/internal/analysis"
	"gosus/internal/ingestion"
	"gosus/internal/narrative"
	"gosus/internal/report"
	"gosus/internal/session"
	"gosus/internal/testkit"

	"github.com/spf13/cobra"
)

// designFlags are shared by the commands that run a test
type designFlags struct {
	dependence string
	method     string
	exclude    []string
}

func (f *designFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dependence, "dependence", "", "Sample dependence: independent or dependent")
	cmd.Flags().StringVar(&f.method, "method", "", "Test family: parametric or non-parametric")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "System labels to leave out of the comparison")
}

func (cc *cliContext) readContent(ctx context.Context, path string) (string, error) {
	return excel.NewDataReader(path, cc.config.Limits.MaxUploadBytes).ReadContent(ctx)
}

// loadCalculator ingests path and deselects the excluded systems
func (cc *cliContext) loadCalculator(ctx context.Context, path string, exclude []string) (*session.Calculator, error) {
	content, err := cc.readContent(ctx, path)
	if err != nil {
		return nil, err
	}
	calc, err := session.NewCalculator(content,
		session.WithTukeyK(cc.config.Analysis.TukeyK),
		session.WithLogger(cc.logger))
	if err != nil {
		return nil, err
	}

	for _, name := range exclude {
		index := -1
		for i, s := range calc.Studies() {
			if s.Name == strings.TrimSpace(name) {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("%w: no system labelled %q", core.ErrStudyNotFound, name)
		}
		if err := calc.SetActive(index, false); err != nil {
			return nil, err
		}
	}
	return calc, nil
}

func applyDesign(calc *session.Calculator, f designFlags) error {
	if f.dependence != "" {
		d, err := sus.ParseDependence(f.dependence)
		if err != nil {
			return err
		}
		if err := calc.ChooseDependence(d); err != nil {
			return err
		}
	}
	if f.method != "" {
		p, err := sus.ParseParametric(f.method)
		if err != nil {
			return err
		}
		if err := calc.ChooseMethod(p); err != nil {
			return err
		}
	}
	return nil
}

func (cc *cliContext) engine() *analysis.Engine {
	return analysis.NewEngine(primitives.New(), cc.logger)
}

func newValidateCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a questionnaire file without analysing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := cc.readContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ingestion.Check(content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func newDescribeCmd(cc *cliContext) *cobra.Command {
	var format string
	var exclude []string

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Print SUS descriptive statistics per system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := cc.loadCalculator(cmd.Context(), args[0], exclude)
			if err != nil {
				return err
			}
			views := make([]report.StudyView, 0)
			for i, s := range calc.Studies() {
				views = append(views, report.NewStudyView(i, s, calc.IsActive(i), false))
			}

			switch format {
			case "json":
				return renderJSON(cmd.OutOrStdout(), views)
			case "yaml":
				return renderYAML(cmd.OutOrStdout(), views)
			default:
				renderStudies(cmd.OutOrStdout(), views)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "System labels to mark inactive")
	return cmd
}

func newAnalyzeCmd(cc *cliContext) *cobra.Command {
	var flags designFlags
	var format string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the significance test chosen by the study design",
		Long: `Run the significance test for the selected systems.

Two systems use a t-test, Mann-Whitney U or Wilcoxon signed-rank test depending
on the design; three or more independent systems with a parametric design use a
one-way ANOVA with Bonferroni corrected post-hoc t-tests.

Example: gosus analyze results.csv --dependence independent --method parametric --exclude Legacy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.dependence == "" || flags.method == "" {
				return fmt.Errorf("%w: --dependence and --method are required", core.ErrDesignIncomplete)
			}
			calc, err := cc.loadCalculator(cmd.Context(), args[0], flags.exclude)
			if err != nil {
				return err
			}
			if err := applyDesign(calc, flags); err != nil {
				return err
			}

			result, err := calc.Run(cmd.Context(), cc.engine())
			if err != nil {
				return err
			}
			n, err := narrative.Render(result)
			if err != nil {
				return err
			}

			out := struct {
				Test      *report.TestView `json:"test" yaml:"test"`
				Narrative []string         `json:"narrative" yaml:"narrative"`
			}{report.NewTestView(result), n.Paragraphs}

			switch format {
			case "json":
				return renderJSON(cmd.OutOrStdout(), out)
			case "yaml":
				return renderYAML(cmd.OutOrStdout(), out)
			default:
				renderTest(cmd.OutOrStdout(), out.Test)
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), n.Text())
				return nil
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func newAssumptionsCmd(cc *cliContext) *cobra.Command {
	var exclude []string
	var format string

	cmd := &cobra.Command{
		Use:   "assumptions [file]",
		Short: "Run Shapiro-Wilk and Levene checks on the selected systems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := cc.loadCalculator(cmd.Context(), args[0], exclude)
			if err != nil {
				return err
			}
			checks, err := calc.CheckAssumptions(cmd.Context(), cc.engine())
			if err != nil {
				return err
			}
			view := report.NewAssumptionsView(checks)

			switch format {
			case "json":
				return renderJSON(cmd.OutOrStdout(), view)
			case "yaml":
				return renderYAML(cmd.OutOrStdout(), view)
			default:
				renderAssumptions(cmd.OutOrStdout(), view)
				return nil
			}
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "System labels to leave out")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func newReportCmd(cc *cliContext) *cobra.Command {
	var flags designFlags
	var title, output string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Write a Markdown or HTML report",
		Long: `Write a report with descriptive statistics, assumption checks and, when
--dependence and --method are given, the significance test and its narrative.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := cc.loadCalculator(cmd.Context(), args[0], flags.exclude)
			if err != nil {
				return err
			}
			if err := applyDesign(calc, flags); err != nil {
				return err
			}

			in := report.Input{
				Title:         title,
				Studies:       calc.Studies(),
				ActiveIndices: calc.ActiveIndices(),
			}
			engine := cc.engine()
			if design, ok := calc.Design(); ok {
				in.Design = &design
				if in.Result, err = calc.Run(cmd.Context(), engine); err != nil {
					return err
				}
			}
			if len(in.ActiveIndices) >= 2 {
				if in.Assumptions, err = calc.CheckAssumptions(cmd.Context(), engine); err != nil {
					cc.logger.Warn("assumption checks skipped: %v", err)
				}
			}

			rep, err := report.Build(in)
			if err != nil {
				return err
			}
			content := []byte(report.Markdown(rep))
			if asHTML {
				content = report.HTML(rep)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(output, content, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			cc.logger.Info("report written to %s", output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Report title")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of Markdown")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var seed int64
	var respondents int
	var noise float64
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic questionnaire file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultSUSConfig()
			cfg.Seed = seed
			cfg.Noise = noise
			for i := range cfg.Systems {
				cfg.Systems[i].Respondents = respondents
			}

			content, err := testkit.NewSUSDataGenerator(cfg).Generate()
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), content)
				return nil
			}
			return os.WriteFile(output, []byte(content+"\n"), 0o644)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().IntVar(&respondents, "respondents", 12, "Respondents per system")
	cmd.Flags().Float64Var(&noise, "noise", 0.8, "Standard deviation of individual ratings")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
