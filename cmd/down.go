package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove services",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeEngine, err := newStack(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEngine()

		if err := s.Down(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Environment stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downCmd)
}
