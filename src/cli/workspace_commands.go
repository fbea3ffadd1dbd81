package cli

import (
	"fmt"
	"os"

	"typegate/src/internal/common"
)

// ShowWorkspace prints the active workspace of a fresh manager, which is the
// process working directory until a switch happens.
func ShowWorkspace(configFile string) error {
	manager, err := newManager(configFile)
	if err != nil {
		return err
	}

	active := manager.ActiveWorkspace()
	if active == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "no active workspace (queries resolve against %s)\n", cwd)
		return nil
	}
	fmt.Fprintln(os.Stdout, active)
	return nil
}

// SwitchWorkspace validates path and makes it the active workspace
func SwitchWorkspace(configFile, path string) error {
	manager, err := newManager(configFile)
	if err != nil {
		return err
	}

	canonical, err := manager.SwitchWorkspace(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s %s\n", okColor.Sprint("active workspace:"), canonical)
	return nil
}

// ClearCaches drops every session, binding, overlay and accessed-file record
func ClearCaches(configFile string) error {
	manager, err := newManager(configFile)
	if err != nil {
		return err
	}

	manager.ClearAllCaches()
	common.CLILogger.Info("cleared sessions, engine bindings, overlays and accessed files")
	return nil
}
