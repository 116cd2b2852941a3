package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/inkpad/internal/config"
	"github.com/vango-dev/inkpad/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default inkpad.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing inkpad.json")

	return cmd
}

func runInit(dir string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryCLI, "%s already exists in %s", config.ConfigFileName, dir).
			WithSuggestion("Pass --force to overwrite it")
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if err := config.Default().SaveTo(path); err != nil {
		return err
	}

	success("Wrote %s", path)
	info("Start the server with 'inkpad serve --config %s'", path)
	return nil
}
