package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chunkrecall/trainer/internal/services"
)

var dueLimit int

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List chunks due today, most overdue first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		chunks, err := a.reviews.DueChunks(cmd.Context(), a.userID, dueLimit)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing is due")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDUE\tINTERVAL\tEF\tREVIEWS\tPROMPT")
		for _, c := range chunks {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%d\t%s\n", c.ID, c.NextDueDate, c.IntervalDays, c.EaseFactor, c.ReviewCount, c.JPPrompt)
		}
		return tw.Flush()
	},
}

var reviewTime float64

var reviewCmd = &cobra.Command{
	Use:   "review <id> <quality>",
	Short: "Record a review with recall quality 0-5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chunk id %q", args[0])
		}
		quality, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quality %q", args[1])
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		c, err := a.reviews.Review(cmd.Context(), a.userID, id, quality, reviewTime)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "chunk %d: interval %d, ef %.2f, reviews %d, next due %s\n",
			c.ID, c.IntervalDays, c.EaseFactor, c.ReviewCount, c.NextDueDate)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show deck statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		s, err := a.stats.ChunkStats(cmd.Context(), a.userID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "total chunks\t%d\n", s.TotalChunks)
		fmt.Fprintf(tw, "due today\t%d\n", s.DueToday)
		fmt.Fprintf(tw, "due this week\t%d\n", s.DueThisWeek)
		fmt.Fprintf(tw, "average ef\t%.2f\n", s.AvgEaseFactor)
		fmt.Fprintf(tw, "mastered\t%d\n", s.Mastered)
		fmt.Fprintf(tw, "struggling\t%d\n", s.Struggling)
		fmt.Fprintf(tw, "never reviewed\t%d\n", s.NeverReviewed)
		fmt.Fprintf(tw, "reviews\t%d\n", s.TotalReviews)
		fmt.Fprintf(tw, "accuracy\t%.1f%%\n", s.Accuracy)
		return tw.Flush()
	},
}

func init() {
	dueCmd.Flags().IntVar(&dueLimit, "limit", services.DefaultDailyLimit, "maximum number of chunks to list")
	reviewCmd.Flags().Float64Var(&reviewTime, "time", 0, "seconds spent recalling")
}
