package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"typegate/src/config"
	"typegate/src/internal/common"
	"typegate/src/internal/engine/extproc"
	"typegate/src/server"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	problemColor = color.New(color.FgRed)
)

// newManager builds a manager from the effective configuration
func newManager(configFile string) (*server.Manager, error) {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return nil, err
	}

	common.SetGlobalLogLevel(common.ParseLogLevel(cfg.LogLevel))

	loader := extproc.NewLoader(cfg.Engine.Command, cfg.Engine.Args)
	return server.NewManager(cfg, loader), nil
}

// ShowStatus resolves the project owning path and prints its analysis setup
func ShowStatus(configFile, path string) error {
	manager, err := newManager(configFile)
	if err != nil {
		return err
	}

	status, err := manager.Status(context.Background(), path)
	if err != nil {
		return err
	}

	out := os.Stdout
	headerColor.Fprintln(out, "typegate project status")
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Project root:"), status.Root)
	if status.ActiveWorkspace != "" {
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Workspace:   "), status.ActiveWorkspace)
	}

	engineLine := fmt.Sprintf("typescript %s (%s) at %s",
		status.EngineVersion, status.EngineSource, status.EngineInstallPath)
	if status.EngineSource == "project" {
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Engine:      "), okColor.Sprint(engineLine))
	} else {
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Engine:      "), warnColor.Sprint(engineLine))
	}

	if status.ConfigPath != "" {
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Config:      "), status.ConfigPath)
	} else {
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Config:      "), warnColor.Sprint("none (defaults)"))
	}
	fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Fingerprint: "), status.ConfigFingerprint)
	fmt.Fprintf(out, "%s %d\n", labelColor.Sprint("Root files:  "), status.RootFileCount)

	if len(status.Frameworks) > 0 {
		fmt.Fprintf(out, "%s %v\n", labelColor.Sprint("Frameworks:  "), status.Frameworks)
	}

	if len(status.ConfigErrors) > 0 {
		fmt.Fprintln(out)
		problemColor.Fprintln(out, "Config problems:")
		for _, problem := range status.ConfigErrors {
			fmt.Fprintf(out, "  %s %s\n", problemColor.Sprint("✗"), problem)
		}
	}

	if len(status.Tips) > 0 {
		fmt.Fprintln(out)
		for _, tip := range status.Tips {
			fmt.Fprintf(out, "%s %s\n", warnColor.Sprint("tip:"), tip)
		}
	}

	return nil
}
