package cmd

import (
	"fmt"
	"os"

	"Netlab/pkg"
	"Netlab/pkg/routing"
	"Netlab/pkg/topology"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [scenario]",
	Short: "Show Resources",
	Long:  `Show the nodes, links, structural report or switch routes of a scenario without starting it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd, args)
		if err != nil {
			return err
		}
		switch class, _ := cmd.Flags().GetString("class"); class {
		case "nodes":
			pkg.ShowNodes(os.Stdout, sc.Topology)
		case "links":
			pkg.ShowLinks(os.Stdout, sc.Topology)
		case "report":
			pkg.ShowReport(os.Stdout, topology.Analyze(sc.Topology))
		case "routes":
			n, err := routing.FromTopology(sc.Topology)
			if err != nil {
				return err
			}
			return pkg.ShowRoutes(os.Stdout, n)
		default:
			return fmt.Errorf("invalid class %q (nodes, links, report, routes)", class)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	addScenarioFlags(showCmd)
	showCmd.Flags().String("class", "nodes", "Class of the element to show")
}
