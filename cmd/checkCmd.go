package cmd

import (
	"fmt"
	"os"

	"Netlab/pkg"
	"Netlab/pkg/nat"
	"Netlab/pkg/routing"
	"Netlab/pkg/topology"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [scenario]",
	Short: "Validate a scenario without starting it",
	Long: `Validate the topology and, when present, the address plan of a scenario,
then print the structural report of its graph and the switch routes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd, args)
		if err != nil {
			return err
		}
		if err := topology.Validate(sc.Topology); err != nil {
			return err
		}
		report := topology.Analyze(sc.Topology)
		pkg.ShowReport(os.Stdout, report)
		if !report.Connected {
			return fmt.Errorf("topology %s is not connected", sc.Topology.Name)
		}
		routes, err := routing.FromTopology(sc.Topology)
		if err != nil {
			return err
		}
		if err := pkg.ShowRoutes(os.Stdout, routes); err != nil {
			return err
		}
		if sc.Plan == nil {
			return nil
		}
		if err := nat.Validate(sc.Plan); err != nil {
			return fmt.Errorf("invalid address plan: %w", err)
		}
		if err := nat.CheckTopology(sc.Plan, sc.Topology); err != nil {
			return fmt.Errorf("address plan does not fit topology: %w", err)
		}
		fmt.Printf("address plan ok: %d commands, %d rules\n", len(nat.Plan(sc.Plan)), len(nat.Rules(sc.Plan)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addScenarioFlags(checkCmd)
}
