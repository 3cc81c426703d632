package cmd

import (
	"context"
	"os"

	"conductor/internal/config"
	"conductor/internal/discovery"
	"conductor/internal/dispatch"
	"conductor/internal/orchestrator"
	"conductor/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
)

// rootConfigPath overrides the configuration directory. When empty, the
// default user config directory is used.
var rootConfigPath string

// rootLogLevel overrides the configured log level for this invocation.
var rootLogLevel string

// rootQuiet suppresses progress output (spinners) for scripting.
var rootQuiet bool

// rootCmd represents the base command for the conductor application.
var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Route natural-language tasks to capability providers",
	Long: `conductor analyzes a natural-language task, discovers which MCP
capability providers can serve it, installs missing ones, and coordinates
specialized roles through an execution pattern (direct, parallel, router,
orchestrator, swarm or evaluator-optimizer) to produce a result.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "conductor version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

// loadCLIConfig resolves the configuration for this invocation and
// initializes logging from it.
func loadCLIConfig() (config.Config, error) {
	path := rootConfigPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}
	if rootLogLevel != "" {
		cfg.LogLevel = rootLogLevel
	}
	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel), os.Stderr)
	return cfg, nil
}

// newCoordinator builds a started coordinator over an MCP session wired from
// the configured providers. The caller owns both and must shut them down.
func newCoordinator(ctx context.Context, cfg config.Config, runner dispatch.Runner) (*orchestrator.Coordinator, *discovery.MCPSession, error) {
	session := discovery.NewMCPSession(cfg.Providers)
	c, err := orchestrator.New(cfg, orchestrator.Deps{
		Session: session,
		Runner:  runner,
	})
	if err != nil {
		session.Close()
		return nil, nil, err
	}
	if err := c.Start(ctx); err != nil {
		session.Close()
		return nil, nil, err
	}
	return c, session, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "",
		"config directory (default is $HOME/.config/conductor)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "",
		"override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false,
		"suppress progress output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExecuteCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newCapabilitiesCmd())
	rootCmd.AddCommand(newMetricsCmd())
}
