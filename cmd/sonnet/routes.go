package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/indigo-web/sonnet/router"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table with resolved file locations",
	RunE:  runRoutes,
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	table := router.Default(cfg)
	out := cmd.OutOrStdout()

	for _, path := range table.Paths() {
		action, _ := table.Dispatch(path)
		switch a := action.(type) {
		case router.ServeFile:
			fmt.Fprintf(out, "%-30s file      %s\n", path, a.Path)
		case router.Redirect:
			fmt.Fprintf(out, "%-30s redirect  %s\n", path, a.URL)
		}
	}

	return nil
}
