package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/contextkeys"
	"github.com/zero-day-ai/fraudgraph/internal/observability"
	"github.com/zero-day-ai/fraudgraph/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "fraudgraph",
	Short: "fraudgraph - graph-backed fraud detection",
	Long: `fraudgraph stores clients, accounts, devices, locations and transactions
in Neo4j and runs fraud-pattern detection over them.

Run 'fraudgraph serve' to start the HTTP API, or use the node, detect and
query commands directly against the graph.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// session is the state prepared before any command runs.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string
	flags  *GlobalFlags
}

var current *session

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs. It resolves the config
// file, builds the logger and tags the command context with a run id.
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
		current = &session{flags: flags, logger: slog.Default()}
		return nil
	}

	configFile, err := config.ExpandPath(flags.ConfigFile)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "invalid config path", err)
	}
	loader := config.NewConfigLoader(config.NewValidator())
	var cfg *config.Config
	if configFile != "" {
		cfg, err = loader.Load(configFile)
	} else {
		cfg, err = loader.LoadWithDefaults(config.DefaultConfigPath(config.DefaultHomeDir()))
	}
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to load config", err)
	}

	logging := cfg.Logging
	switch {
	case flags.IsVerbose():
		logging.Level = "debug"
	case flags.IsQuiet():
		logging.Level = "error"
	}
	logger, err := observability.NewLogger(logging, cmd.ErrOrStderr())
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to create logger", err)
	}
	slog.SetDefault(logger)

	runID := uuid.NewString()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = contextkeys.WithRequestID(ctx, runID)
	ctx = contextkeys.WithCaller(ctx, "cli")
	cmd.SetContext(ctx)

	current = &session{cfg: cfg, logger: logger, runID: runID, flags: flags}
	logger.DebugContext(ctx, "configuration loaded", "command", cmd.CommandPath(), "config", configFile)
	return nil
}

// formatter returns the output formatter for cmd's stdout.
func formatter(cmd *cobra.Command) internal.Formatter {
	format := internal.FormatText
	if current != nil && current.flags != nil {
		format = current.flags.GetOutputFormat()
	}
	return internal.NewFormatter(format, cmd.OutOrStdout())
}

func jsonOutput(cmd *cobra.Command) bool {
	_, ok := formatter(cmd).(*internal.JSONFormatter)
	return ok
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput(cmd) {
			return formatter(cmd).PrintJSON(version.Info())
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return err
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for fraudgraph.

Bash:

  $ source <(fraudgraph completion bash)

Zsh:

  $ fraudgraph completion zsh > "${fpath[1]}/_fraudgraph"

Fish:

  $ fraudgraph completion fish | source
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}
