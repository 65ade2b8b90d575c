package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Netlab/pkg"
	"Netlab/pkg/convergence"
	"Netlab/pkg/nat"
	"Netlab/pkg/node"
	"Netlab/pkg/shell"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Start a scenario and open the interactive shell",
	Long: `Start the scenario's network, configure its NAT gateway if it has one,
wait for the switches to converge and hand over to the interactive shell.
The network is torn down when the shell exits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(cmd, args)
		if err != nil {
			return err
		}
		if sc.Plan != nil {
			if err := nat.Validate(sc.Plan); err != nil {
				return fmt.Errorf("invalid address plan: %w", err)
			}
			if err := nat.CheckTopology(sc.Plan, sc.Topology); err != nil {
				return fmt.Errorf("address plan does not fit topology: %w", err)
			}
		}
		gate, err := gateFromFlags(cmd)
		if err != nil {
			return err
		}
		image, _ := cmd.Flags().GetString("image")
		noShell, _ := cmd.Flags().GetBool("no-shell")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m, err := pkg.NewManager(image)
		if err != nil {
			return err
		}
		// wait, before shutting down, clear up the resources
		defer m.Destroy()

		log.Info("* Starting network...")
		if err := m.Start(ctx, sc.Topology); err != nil {
			return err
		}

		if sc.Plan != nil {
			log.Info("* Configuring NAT gateway and private hosts...")
			if err := m.Configure(ctx, nat.Plan(sc.Plan)); err != nil {
				return err
			}
		}

		log.Info("* Waiting for network convergence...")
		if err := m.Wait(ctx, gate); err != nil {
			return err
		}
		log.Info("* Network ready")

		if noShell {
			<-ctx.Done()
			return nil
		}
		return shell.New(m, os.Stdin, os.Stdout).Run(ctx)
	},
}

// gateFromFlags builds the convergence gate. A nil Signal means the STP
// signal of the running network, which only exists after start.
func gateFromFlags(cmd *cobra.Command) (*convergence.Gate, error) {
	mode, _ := cmd.Flags().GetString("wait")
	delay, _ := cmd.Flags().GetDuration("wait-delay")
	timeout, _ := cmd.Flags().GetDuration("wait-timeout")

	gate := convergence.NewGate()
	gate.Timeout = timeout
	switch mode {
	case "delay":
		gate.Signal = convergence.AfterDelay(delay)
		if delay >= timeout {
			gate.Timeout = delay + convergence.DefaultInterval
		}
	case "stp":
		gate.Signal = nil
	default:
		return nil, fmt.Errorf("unknown wait mode %q (delay, stp)", mode)
	}
	return gate, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	addScenarioFlags(runCmd)
	runCmd.Flags().String("image", node.DefaultImage, "container image for hosts")
	runCmd.Flags().String("wait", "delay", "convergence wait: delay (fixed) or stp (poll port states)")
	runCmd.Flags().Duration("wait-delay", convergence.DefaultDelay, "fixed convergence delay")
	runCmd.Flags().Duration("wait-timeout", convergence.DefaultTimeout, "give up waiting for convergence after this long")
	runCmd.Flags().Bool("no-shell", false, "keep the network up until interrupted instead of opening the shell")
}
