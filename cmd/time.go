package cmd

import (
	"fmt"
	"strconv"
	"time"

	yuerrors "github.com/nanw1103/yumako/internal/errors"
	"github.com/nanw1103/yumako/pkg/timeutil"

	"github.com/spf13/cobra"
)

var (
	timeUnix   bool
	timeUnixMS bool
	timePad    bool
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Parse and format human-friendly times",
	Long: `Parse human time expressions and format durations.

Accepted time expressions include relative offsets ("-2h30m", "+1d",
"now"), unix timestamps in seconds or milliseconds, RFC3339 and common
date forms ("2023-12-04", "Dec 4, 2023", "12/04/2023"), and times of
day ("12:30"). Results are normalized to UTC.

Examples:
  # Two and a half hours ago, as RFC3339 UTC
  yumako time of -2h30m

  # A unix timestamp for a calendar date
  yumako time of "Dec 4, 2023" --unix

  # Duration expressions to seconds
  yumako time duration 1h30m
  yumako time duration PT2H3M4S

  # Human-readable form of a duration
  yumako time display 9000s`,
}

var timeOfCmd = &cobra.Command{
	Use:   "of <expression>",
	Short: "Parse a time expression",
	Long: `Parse a time expression and print it as RFC3339 UTC.

Use --unix or --unix-ms for a numeric timestamp instead.

Examples:
  yumako time of now
  yumako time of -7d
  yumako time of 2023-12-04T12:30:45Z --unix-ms`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeOf,
}

var timeDurationCmd = &cobra.Command{
	Use:   "duration <expression>",
	Short: "Parse a duration expression to seconds",
	Long: `Parse a human or ISO-8601 duration expression and print the
number of seconds.

Examples:
  yumako time duration 3m4s
  yumako time duration 1w2d
  yumako time duration PT0.5S`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeDuration,
}

var timeDisplayCmd = &cobra.Command{
	Use:   "display <expression>",
	Short: "Show a duration in human-readable form",
	Long: `Parse a duration expression and print it using the two largest
units ("2d4h", "3h30m", "45s"). --pad zero-pads the numbers so columns
of durations line up.

Examples:
  yumako time display 9000s
  yumako time display 1h30m --pad`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeDisplay,
}

func init() {
	rootCmd.AddCommand(timeCmd)

	timeCmd.AddCommand(timeOfCmd)
	timeOfCmd.Flags().BoolVar(&timeUnix, "unix", false, "Print unix seconds")
	timeOfCmd.Flags().BoolVar(&timeUnixMS, "unix-ms", false, "Print unix milliseconds")

	timeCmd.AddCommand(timeDurationCmd)

	timeCmd.AddCommand(timeDisplayCmd)
	timeDisplayCmd.Flags().BoolVar(&timePad, "pad", false, "Zero-pad the numbers")
}

func runTimeOf(cmd *cobra.Command, args []string) error {
	t, err := timeutil.Parse(args[0])
	if err != nil {
		return yuerrors.InvalidTimeError(args[0])
	}

	switch {
	case timeUnixMS:
		fmt.Println(t.UnixMilli())
	case timeUnix:
		fmt.Println(t.Unix())
	default:
		fmt.Println(t.UTC().Format(time.RFC3339))
	}
	return nil
}

func runTimeDuration(cmd *cobra.Command, args []string) error {
	d, err := timeutil.ParseDuration(args[0])
	if err != nil {
		return yuerrors.InvalidDurationError(args[0])
	}

	fmt.Println(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
	return nil
}

func runTimeDisplay(cmd *cobra.Command, args []string) error {
	d, err := timeutil.ParseDuration(args[0])
	if err != nil {
		return yuerrors.InvalidDurationError(args[0])
	}

	if timePad {
		fmt.Println(timeutil.DisplayPadded(d))
	} else {
		fmt.Println(timeutil.Display(d))
	}
	return nil
}
