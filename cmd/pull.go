package cmd

import (
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull every image the stack needs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		s, closeEngine, err := newStack(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEngine()

		return s.PullImages(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
