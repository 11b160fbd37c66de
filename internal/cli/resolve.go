package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/patient-scheduler/internal/temporal"
)

var (
	resolveNow string
	resolveTZ  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Resolve a time expression to an ISO-8601 UTC timestamp",
	Long: `Resolve free text such as "tomorrow 3pm" or "next friday 10:30" the same way
the interview does. --now pins the reference instant and --tz selects the
wall-clock zone (defaults to the local zone).`,
	Example: `  schedulectl resolve "tomorrow 3pm"
  schedulectl resolve --now 2025-01-06T10:00:00Z --tz America/Toronto "friday 9h"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := time.Local
		if tz := strings.TrimSpace(resolveTZ); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("invalid --tz %q: %w", tz, err)
			}
			loc = l
		}
		now := time.Now
		if s := strings.TrimSpace(resolveNow); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return fmt.Errorf("invalid --now %q: %w", s, err)
			}
			now = func() time.Time { return t }
		}

		text := strings.Join(args, " ")
		t, ok := temporal.NewResolver(loc, now).Resolve(text)
		if !ok {
			return fmt.Errorf("could not resolve %q", text)
		}
		fmt.Fprintln(cmd.OutOrStdout(), temporal.FormatISO(t))
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveNow, "now", "", "reference instant (RFC 3339)")
	resolveCmd.Flags().StringVar(&resolveTZ, "tz", "", "IANA zone for wall-clock times")
	rootCmd.AddCommand(resolveCmd)
}
