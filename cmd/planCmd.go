package cmd

import (
	"fmt"
	"os"

	"Netlab/pkg"
	"Netlab/pkg/nat"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [scenario]",
	Short: "Print the gateway configuration of a scenario",
	Long:  `Print, in order, the address, route and packet-filter commands run on the nodes of a NAT scenario.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd, args)
		if err != nil {
			return err
		}
		if sc.Plan == nil {
			return fmt.Errorf("scenario %s has no address plan", sc.Topology.Name)
		}
		if err := nat.Validate(sc.Plan); err != nil {
			return err
		}
		pkg.ShowPlan(os.Stdout, nat.Plan(sc.Plan))
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [scenario]",
	Short: "Print a scenario as a Graphviz graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd, args)
		if err != nil {
			return err
		}
		dot, err := pkg.Graph(sc.Topology)
		if err != nil {
			return err
		}
		fmt.Print(dot)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd, graphCmd)
	addScenarioFlags(planCmd)
	addScenarioFlags(graphCmd)
}
