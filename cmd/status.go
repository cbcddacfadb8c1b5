package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/sarth-shah20/llmstack/internal/docker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List managed containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeEngine, err := newStack(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEngine()

		containers, err := s.Status(cmd.Context())
		if err != nil {
			return err
		}

		if len(containers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No llmstack services found.")
			return nil
		}

		return printStatus(cmd.OutOrStdout(), containers, time.Now())
	},
}

// printStatus writes containers as aligned columns.
func printStatus(out io.Writer, containers []docker.ContainerInfo, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tIMAGE\tSTATUS\tCREATED\tPORTS")

	for _, c := range containers {
		created := "-"
		if !c.Created.IsZero() {
			created = units.HumanDuration(now.Sub(c.Created)) + " ago"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Image, c.Status, created, strings.Join(c.Ports, ", "))
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
