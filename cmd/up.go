package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarth-shah20/llmstack/internal/stack"
)

var detach bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start Open WebUI and wait until it is healthy",
	Long: `Pull the images, remove leftovers of a previous run, create the networks and
containers, then wait up to two minutes for Open WebUI to report healthy.

Without --detach the command keeps running and removes everything again on
Ctrl+C or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeEngine, err := newStack(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEngine()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := s.Up(ctx); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Open WebUI is ready at %s\n", stack.PrimaryURL)
		if detach {
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop.")
		<-ctx.Done()

		logger.Info("cleaning up containers, if needed")
		return s.Down(context.WithoutCancel(ctx))
	},
}

func init() {
	upCmd.Flags().BoolVarP(&detach, "detach", "d", false, "return once healthy and leave the stack running")
	rootCmd.AddCommand(upCmd)
}
