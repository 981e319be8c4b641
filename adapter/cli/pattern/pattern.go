package pattern

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scopeID string

// Cmd is the pattern command group
var Cmd = &cobra.Command{
	Use:   "pattern",
	Short: "Record and inspect engagement patterns",
	Long: `Record when members engage, and ask when they are most likely to
engage again. Buckets are hours of the week in the configured time zone.`,
}

func init() {
	Cmd.PersistentFlags().StringVarP(&scopeID, "scope", "s", "", "scope (community) id")

	Cmd.AddCommand(recordCmd)
	Cmd.AddCommand(topCmd)
	Cmd.AddCommand(predictCmd)
	Cmd.AddCommand(notifyCmd)
	Cmd.AddCommand(peaksCmd)
}

// parseAt parses an --at value, defaulting to now.
func parseAt(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at, use RFC 3339: %w", err)
	}
	return t, nil
}

func hourLabel(day string, hour int) string {
	return fmt.Sprintf("%s %02d:00", day, hour)
}
