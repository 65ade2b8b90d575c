package cmd

import (
	"fmt"

	"Netlab/pkg/scenario"
	"Netlab/pkg/topology"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netlab",
	Short: "netlab network scenario CLI",
	Long: `Build emulated networks of OVS switches and container hosts with
shaped links, configure NAT gateways on them and explore them from an
interactive shell.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.SetLevel(log.InfoLevel)
		if debug {
			log.SetReportCaller(true)
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "print debug messages")
}

// addScenarioFlags registers the flags used to pick a scenario.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("from", "f", "", "path to a topology file, instead of a built-in scenario")
	cmd.Flags().Bool("stp", false, "enable STP on every switch of the scenario")
	cmd.Flags().String("forward-policy", "", "policy of the gateway FORWARD chain (e.g. DROP), default leaves it unchanged")
}

// loadScenario resolves either the -f file or the scenario named by the
// first argument.
func loadScenario(cmd *cobra.Command, args []string) (scenario.Scenario, error) {
	var sc scenario.Scenario
	path, _ := cmd.Flags().GetString("from")
	switch {
	case path != "":
		t, p, err := topology.Load(path)
		if err != nil {
			return sc, err
		}
		sc = scenario.Scenario{Topology: t, Plan: p}
	case len(args) == 1:
		var err error
		if sc, err = scenario.ByName(args[0]); err != nil {
			return sc, err
		}
	default:
		return sc, fmt.Errorf("need a scenario (one of %v) or -f <file>", scenario.Names())
	}

	if stp, _ := cmd.Flags().GetBool("stp"); stp {
		for i := range sc.Topology.Nodes {
			if sc.Topology.Nodes[i].IsSwitch() {
				sc.Topology.Nodes[i].STP = true
			}
		}
	}
	if sc.Plan != nil {
		if policy, _ := cmd.Flags().GetString("forward-policy"); policy != "" {
			sc.Plan.ForwardPolicy = policy
		}
	}
	return sc, nil
}
