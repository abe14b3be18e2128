package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"sharpcheck/internal/analyzer"
	"sharpcheck/internal/config"
	"sharpcheck/internal/logging"
	"sharpcheck/internal/watcher"
	"sharpcheck/internal/workspace"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	outputFlag         string
	verboseFlag        bool
	logLevelFlag       string
	includeFlag        []string
	excludeFlag        []string
	failOnFlag         string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sharpcheck [solutions, projects, files or directories]",
	Short: "A static analyzer for C# solutions and projects",
	Long: `sharpcheck parses C# sources, builds symbol, binding and control flow
information for a whole workspace and reports diagnostics with suggestions.

Examples:
  sharpcheck .                             # Analyze the current directory
  sharpcheck App.sln                       # Analyze every project of a solution
  sharpcheck src/App/App.csproj            # Analyze one project and its references
  sharpcheck --format=json -o out.json .   # Write a JSON report
  sharpcheck --fail-on=warning .           # Exit 1 on warnings too
  sharpcheck --config=.sharpcheck.yml .    # Use custom config
  sharpcheck --generate-config             # Generate sample config file`,
	Args: cobra.ArbitraryArgs,
	Run:  runAnalysis,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&formatFlag, "format", "f", "", "Output format (console, json, msgpack)")
	flags.BoolVarP(&watchFlag, "watch", "w", false, "Re-run the analysis when sources change")
	flags.StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	flags.BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	flags.StringVarP(&outputFlag, "output", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose report and debug logging")
	flags.StringVar(&logLevelFlag, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringSliceVar(&includeFlag, "include", nil, "Only analyze files matching these globs")
	flags.StringSliceVar(&excludeFlag, "exclude", nil, "Skip files matching these globs")
	flags.StringVar(&failOnFlag, "fail-on", "", "Exit 1 on diagnostics at or above this severity (error, warning, none)")
}

// errThreshold marks a run whose diagnostics reached --fail-on.
var errThreshold = errors.New("diagnostics at or above the fail-on severity")

func runAnalysis(cmd *cobra.Command, args []string) {
	if err := run(cmd, args); err != nil {
		if !errors.Is(err, errThreshold) {
			fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		}
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(cmd *cobra.Command, args []string) error {
	if generateConfigFlag {
		return generateConfig()
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Setup(logLevelFlag, cfg.Output.Verbose); err != nil {
		return err
	}
	if !cfg.Output.Colors || cfg.Output.OutputFile != "" || !analyzer.StdoutIsTerminal() {
		color.NoColor = true
		cfg.Output.Colors = false
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws, report, err := analyze(ctx, args, cfg)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if err := emit(report, cfg); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if watchFlag {
		return watch(ctx, args, ws, cfg)
	}

	if sev, ok := cfg.Output.FailOnSeverity(); ok && report.HasAtLeast(sev) {
		return errThreshold
	}
	return nil
}

// applyFlags lets explicitly set flags override the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if outputFlag != "" {
		cfg.Output.OutputFile = outputFlag
	}
	if verboseFlag {
		cfg.Output.Verbose = true
	}
	if failOnFlag != "" {
		cfg.Output.FailOn = failOnFlag
	}
	if cmd.Flags().Changed("include") {
		cfg.Analysis.Workspace.Include = includeFlag
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Analysis.Workspace.Exclude = excludeFlag
	}
}

func analyze(ctx context.Context, args []string, cfg *config.Config) (*workspace.Workspace, *analyzer.AnalysisReport, error) {
	ws, err := workspace.LoadAll(args, cfg.Analysis.Workspace.FollowRefs)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Output.Verbose {
		engine := analyzer.NewAnalyzerWithConfig(cfg.Analysis)
		status("🔍 Analyzing %d C# files in %d projects with %d passes...", len(ws.SourceFiles()), len(ws.Projects), engine.GetPassCount())
		status("🎯 Enabled: %s", strings.Join(engine.GetPassNames(), ", "))
	} else {
		status("🔍 Analyzing %d C# files in %d projects...", len(ws.SourceFiles()), len(ws.Projects))
	}

	report, err := analyzer.RunWorkspaceWithConfig(ctx, ws, cfg.Analysis)
	if errors.Is(err, context.Canceled) {
		// interrupted runs still report what was analyzed
		status("⚠️  Analysis interrupted, report is partial")
		err = nil
	}
	return ws, report, err
}

func emit(report *analyzer.AnalysisReport, cfg *config.Config) error {
	data, err := analyzer.NewReportGeneratorWithConfig(cfg).Generate(report)
	if err != nil {
		return err
	}
	if cfg.Output.OutputFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := writeReportToFile(data, cfg.Output.OutputFile); err != nil {
		return err
	}
	status("📄 Report saved to: %s", cfg.Output.OutputFile)
	return nil
}

// watch re-runs the whole workspace analysis after each batch of changes
// until ctx is done.
func watch(ctx context.Context, args []string, ws *workspace.Workspace, cfg *config.Config) error {
	fw, err := watcher.NewFileWatcher(cfg)
	if err != nil {
		return err
	}
	defer fw.Close()

	handler := func(files []string) error {
		status("🔄 %d file(s) changed, re-analyzing...", len(files))
		_, report, err := analyze(ctx, args, cfg)
		if err != nil {
			return err
		}
		return emit(report, cfg)
	}
	if err := fw.Watch(ws.Dirs(), handler); err != nil {
		return err
	}
	status("👀 Watching %d directories, press Ctrl+C to stop", len(fw.GetWatchedPaths()))
	<-ctx.Done()
	status("👋 Stopped watching")
	return nil
}

func writeReportToFile(report []byte, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, report, 0644)
}

func generateConfig() error {
	configPath := ".sharpcheck.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		return fmt.Errorf("generate config file: %w", err)
	}
	color.Green("✅ Generated sample configuration file: %s\n", configPath)
	color.Cyan("📝 Edit this file to customize sharpcheck behavior\n")
	color.Cyan("🚀 Run 'sharpcheck --config=%s .' to use it\n", configPath)
	return nil
}

// status writes progress lines to stderr so stdout carries only the report.
func status(format string, a ...any) {
	fmt.Fprintln(os.Stderr, color.CyanString(format, a...))
}
