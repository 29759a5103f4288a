package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ui_flow_runner/application/runner"
	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"
	"ui_flow_runner/infrastructure/browser"
	"ui_flow_runner/infrastructure/config"
	"ui_flow_runner/infrastructure/lint"
	"ui_flow_runner/infrastructure/metrics"
	"ui_flow_runner/infrastructure/scenario"
	"ui_flow_runner/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// DriverFactory launches the browser driver scenarios run on
type DriverFactory func(logger *logrus.Logger, opts browser.Options) (interfaces.Driver, error)

func launchChromium(logger *logrus.Logger, opts browser.Options) (interfaces.Driver, error) {
	return browser.NewDriver(logger, opts)
}

type TerminalInterface struct {
	cfg       config.Config
	logger    *logrus.Logger
	linter    *lint.ScenarioLinter
	loader    *scenario.Loader
	newDriver DriverFactory
	driver    interfaces.Driver
}

// NewTerminalInterface - reads configuration and prepares the command tree
func NewTerminalInterface() (*TerminalInterface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newTerminalInterface(cfg, config.NewLogger(cfg.LogLevel), launchChromium), nil
}

func newTerminalInterface(cfg config.Config, logger *logrus.Logger, newDriver DriverFactory) *TerminalInterface {
	linter := lint.NewScenarioLinter(logger)
	return &TerminalInterface{
		cfg:       cfg,
		logger:    logger,
		linter:    linter,
		loader:    scenario.NewLoader(linter, logger),
		newDriver: newDriver,
	}
}

// Run - executes the command line given in args
func (t *TerminalInterface) Run(ctx context.Context, args []string) error {
	root := t.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Close - shuts the browser down if a command started it
func (t *TerminalInterface) Close() error {
	if t.driver == nil {
		return nil
	}
	err := t.driver.Close()
	t.driver = nil
	return err
}

// RootCommand - builds the flowrunner command tree
func (t *TerminalInterface) RootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowrunner",
		Short: "Run scripted UI flows against a web application in a headless browser",
	}

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(
		t.newRunCmd(),
		t.newListCmd(),
		t.newLintCmd(),
		t.newReportCmd(),
	)
	return rootCmd
}

func (t *TerminalInterface) newRunCmd() *cobra.Command {
	var (
		useCatalog bool
		only       []string
		cfg        = t.cfg
		headed     bool
	)

	cmd := &cobra.Command{
		Use:     "run [files...]",
		Aliases: []string{"r"},
		Short:   "Run scenarios from YAML files and/or the built-in catalog",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if headed {
				cfg.Headless = false
			}
			if cfg.Concurrency < 1 {
				return errors.New("concurrency must be at least 1")
			}

			scenarios, err := t.collect(args, useCatalog, only)
			if err != nil {
				return err
			}

			driver, err := t.ensureDriver(cfg)
			if err != nil {
				return err
			}

			recorder := metrics.NewPrometheusRecorder()
			r := runner.NewRunner(driver, recorder, t.logger, runner.Options{
				SettleDelay:   cfg.SettleDelay,
				ActionTimeout: cfg.ActionTimeout,
				AssertTimeout: cfg.AssertTimeout,
				Concurrency:   cfg.Concurrency,
			})

			results := r.RunAll(cmd.Context(), scenarios, cfg.BaseURL)
			summary := printResults(cmd.OutOrStdout(), results)

			if cfg.ReportPath != "" {
				if err := storage.NewReportStore(cfg.ReportPath).SaveResults(results); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cfg.ReportPath)
			}
			if cfg.MetricsPath != "" {
				if err := recorder.WriteTextfile(cfg.MetricsPath); err != nil {
					return err
				}
			}

			if notPassed := summary.Failed + summary.Errored; notPassed > 0 {
				return fmt.Errorf("%d of %d scenario(s) did not pass", notPassed, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&useCatalog, "catalog", "c", false, "Include the built-in recorded scenarios")
	cmd.Flags().StringSliceVarP(&only, "only", "o", nil, "Run only scenarios whose name starts with one of these ids (for example: TC001)")
	cmd.Flags().StringVarP(&cfg.BaseURL, "base-url", "u", cfg.BaseURL, "Base URL relative navigate steps resolve against")
	cmd.Flags().IntVarP(&cfg.Concurrency, "concurrency", "j", cfg.Concurrency, "Number of scenarios run at once")
	cmd.Flags().BoolVar(&headed, "headed", false, "Show the browser window")
	cmd.Flags().DurationVar(&cfg.SettleDelay, "settle-delay", cfg.SettleDelay, "Pause before every click and fill")
	cmd.Flags().StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "Write a JSON report to this path")
	cmd.Flags().StringVar(&cfg.MetricsPath, "metrics", cfg.MetricsPath, "Write Prometheus metrics to this textfile")
	return cmd
}

func (t *TerminalInterface) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [files...]",
		Aliases: []string{"ls"},
		Short:   "List scenarios; without files the built-in catalog is listed",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := t.collect(args, len(args) == 0, nil)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "NAME\tSTEPS\tASSERTIONS")
			for _, s := range scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\n", s.Name, len(s.Steps), len(s.Assertions))
			}
			return nil
		},
	}
}

func (t *TerminalInterface) newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [files...]",
		Short: "Check scenario definitions; without files the built-in catalog is checked",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				scenarios []entities.Scenario
				err       error
			)
			if len(args) == 0 {
				scenarios, err = t.loader.Catalog()
			} else {
				scenarios, err = decodeFiles(args)
			}
			if err != nil {
				return err
			}

			var invalid int
			for _, s := range scenarios {
				report := t.linter.Check(s)
				if err := t.linter.Log(report); err != nil {
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "INVALID %s\n", s.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "OK      %s (%d warning(s))\n", s.Name, len(report.Warnings()))
				}
				for _, issue := range report.Issues {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", issue)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d scenario(s) are invalid", invalid, len(scenarios))
			}
			return nil
		},
	}
}

func (t *TerminalInterface) newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [path]",
		Short: "Show the results of a saved JSON report; defaults to FLOW_REPORT_PATH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := t.cfg.ReportPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no report path. Pass one or set FLOW_REPORT_PATH")
			}

			results, err := storage.NewReportStore(path).LoadResults()
			if err != nil {
				return fmt.Errorf("load report: %w", err)
			}
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No results in %s\n", path)
				return nil
			}

			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

// collect - loads scenarios from files and optionally the catalog, then
// applies the id filter
func (t *TerminalInterface) collect(files []string, withCatalog bool, only []string) ([]entities.Scenario, error) {
	if len(files) == 0 && !withCatalog {
		return nil, errors.New("no scenarios given. Pass YAML files or use `--catalog`")
	}

	var scenarios []entities.Scenario
	if withCatalog {
		catalog, err := t.loader.Catalog()
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, catalog...)
	}

	loaded, err := t.loader.LoadFiles(files)
	if err != nil {
		return nil, err
	}
	scenarios = append(scenarios, loaded...)

	scenarios = scenario.Filter(scenarios, only)
	if len(scenarios) == 0 {
		return nil, errors.New("no scenarios matched")
	}
	return scenarios, nil
}

// ensureDriver - launches the browser on first use
func (t *TerminalInterface) ensureDriver(cfg config.Config) (interfaces.Driver, error) {
	if t.driver != nil {
		return t.driver, nil
	}

	driver, err := t.newDriver(t.logger, browser.Options{
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout,
		LoadTimeout:       cfg.LoadTimeout,
		ActionTimeout:     cfg.ActionTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	t.driver = driver
	return driver, nil
}

// decodeFiles - reads scenario files without rejecting invalid ones, so lint
// can report on them
func decodeFiles(paths []string) ([]entities.Scenario, error) {
	var scenarios []entities.Scenario
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario file: %w", err)
		}
		decoded, err := scenario.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		scenarios = append(scenarios, decoded...)
	}
	return scenarios, nil
}
