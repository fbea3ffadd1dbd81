package cli

import (
	"github.com/spf13/cobra"

	"typegate/src/internal/common"
	versionpkg "typegate/src/internal/version"
)

// CLI Constants
const (
	CmdStatus     = "status"
	CmdWorkspace  = "workspace"
	CmdClear      = "clear"
	CmdConfig     = "config"
	CmdConfigInit = "init"
	CmdVersion    = "version"
	FlagConfig    = "config"
	FlagVerbose   = "verbose"
	FlagForce     = "force"
)

// CLI Variables
var (
	configPath string
	verbose    bool
	force      bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "typegate",
	Short: "typegate - project-aware TypeScript code intelligence",
	Long: `typegate answers code-intelligence queries (hover, definition, references,
completions, diagnostics and more) for TypeScript and JavaScript projects.

Each project root gets its own analysis session built from its tsconfig.json
or jsconfig.json, backed by the project's own typescript installation when one
exists under node_modules, and by the bundled engine otherwise.

AVAILABLE COMMANDS:

  typegate status [path]        # Show the resolved analysis setup for a project
  typegate workspace [path]     # Show or switch the active workspace
  typegate clear                # Drop every cached session, overlay and binding
  typegate config init          # Write the default configuration file
  typegate version              # Show version information

Use 'typegate <command> --help' for detailed command information.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command definitions
var (
	statusCmd = &cobra.Command{
		Use:   CmdStatus + " [path]",
		Short: "Show project analysis status",
		Long: `Display the resolved analysis setup for the project owning path:
engine binding (project-local or bundled), project config file and its
problems, detected frameworks and root-file count.

With no path, the current directory is inspected.

Examples:
  typegate status                  # Inspect the current directory's project
  typegate status src/app.ts       # Inspect the project owning a file`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatusCmd,
	}

	workspaceCmd = &cobra.Command{
		Use:   CmdWorkspace + " [path]",
		Short: "Show or switch the active workspace",
		Long: `Without arguments, print the active workspace. With a path, make it the
active workspace after validating it is an existing directory.

Switching resets every analysis session and engine binding; unsaved overlay
content survives the switch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWorkspaceCmd,
	}

	clearCmd = &cobra.Command{
		Use:   CmdClear,
		Short: "Clear all caches",
		Long: `Drop every analysis session, engine binding, accessed-file record and
unsaved overlay. The next query per project rebuilds everything from disk.`,
		RunE: runClearCmd,
	}

	configCmd = &cobra.Command{
		Use:   CmdConfig,
		Short: "Manage typegate configuration",
		Long: `Manage the typegate configuration file.

Available commands:
  typegate config init          # Write the default configuration file`,
		RunE: runConfigCmd,
	}

	configInitCmd = &cobra.Command{
		Use:   CmdConfigInit,
		Short: "Write the default configuration file",
		Long: `Write the default configuration to ~/.typegate/config.yaml (or the path
given with --config). Refuses to overwrite an existing file unless --force
is set.`,
		RunE: runConfigInitCmd,
	}

	versionCmd = &cobra.Command{
		Use:   CmdVersion,
		Short: "Show version information",
		Long: `Display version information for typegate.

By default, shows only the version number. Use --verbose for detailed build
information including commit hash, build date, and Go version.`,
		RunE: runVersionCmd,
	}
)

func init() {
	// Status command flags
	statusCmd.Flags().StringVarP(&configPath, FlagConfig, "c", "", "Configuration file path (optional)")

	// Workspace command flags
	workspaceCmd.Flags().StringVarP(&configPath, FlagConfig, "c", "", "Configuration file path (optional)")

	// Clear command flags
	clearCmd.Flags().StringVarP(&configPath, FlagConfig, "c", "", "Configuration file path (optional)")

	// Config subcommands
	configInitCmd.Flags().StringVarP(&configPath, FlagConfig, "c", "", "Configuration file path (optional)")
	configInitCmd.Flags().BoolVarP(&force, FlagForce, "f", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)

	// Version command flags
	versionCmd.Flags().BoolVarP(&verbose, FlagVerbose, "v", false, "Show detailed version information")

	// Add commands to root
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Command runner functions - these delegate to the extracted modules

func runStatusCmd(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	return ShowStatus(configPath, path)
}

func runWorkspaceCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return ShowWorkspace(configPath)
	}
	return SwitchWorkspace(configPath, args[0])
}

func runClearCmd(cmd *cobra.Command, args []string) error {
	return ClearCaches(configPath)
}

func runConfigCmd(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func runConfigInitCmd(cmd *cobra.Command, args []string) error {
	return InitConfig(configPath, force)
}

func runVersionCmd(cmd *cobra.Command, args []string) error {
	if verbose {
		common.CLILogger.Info("%s", versionpkg.GetFullVersionInfo())
		return nil
	}
	common.CLILogger.Info("typegate %s", versionpkg.GetVersion())
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
