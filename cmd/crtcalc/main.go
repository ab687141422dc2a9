// crtcalc reconstructs large integers and rationals from their residues
// modulo many primes, on one machine or across a coordinator and workers.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agbru/crtcalc/internal/app"
	"github.com/agbru/crtcalc/internal/config"
	apperrors "github.com/agbru/crtcalc/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries a non-zero exit code out of a RunE. The command has
// already reported the failure.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// run executes the crtcalc CLI with the given args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			return apperrors.HandleError(err, stderr)
		}
		fmt.Fprintf(stderr, "crtcalc: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// newRootCmd creates the root cobra command with all subcommands.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "crtcalc",
		Short:         "Chinese Remainder reconstruction on one machine or a cluster",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(
		newRoleCmd(config.RoleLocal, stdout, stderr),
		newRoleCmd(config.RoleCoordinator, stdout, stderr),
		newRoleCmd(config.RoleWorker, stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}

var roleUsage = map[string]struct{ use, short, long string }{
	config.RoleLocal: {
		use:   "run",
		short: "Reconstruct a problem in this process",
		long: `Reconstruct a problem in this process. With --participants N the
coordinator and N-1 workers run as goroutines over in-process channels;
with one participant the residues are folded sequentially.`,
	},
	config.RoleCoordinator: {
		use:   "coordinator",
		short: "Listen for workers and fold their residues",
		long: `Listen on --addr for --participants-1 workers, assign each its share
of residues, compute the seed residue and fold every residue as it
arrives. Every participant must be started with the same problem settings.`,
	},
	config.RoleWorker: {
		use:   "worker",
		short: "Compute residues for a coordinator",
		long: `Connect to the coordinator at --addr as --rank, compute the assigned
number of residues on --threads goroutines and stream each one back.`,
	},
}

// newRoleCmd builds the command running one process role. Every role
// accepts the full flag set so that run files stay portable.
func newRoleCmd(role string, stdout, stderr io.Writer) *cobra.Command {
	u := roleUsage[role]
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:   u.use,
		Short: u.short,
		Long:  u.long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Resolve(&cfg, cmd.Flags()); err != nil {
				return err
			}
			cfg.Role = role
			application, err := app.New(cfg, stderr)
			if err != nil {
				return err
			}
			if code := application.Run(cmd.Context(), stdout); code != apperrors.ExitSuccess {
				return exitError{code: code}
			}
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags(), &cfg)
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			app.PrintVersion(stdout)
			return nil
		},
	}
}
