package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hray3182/coursebot/internal/course"
	"github.com/hray3182/coursebot/internal/format"
	"github.com/hray3182/coursebot/internal/models"
	"github.com/hray3182/coursebot/internal/reminder"
	"github.com/hray3182/coursebot/internal/sheet"
	"github.com/spf13/cobra"
)

var inspectDate string

// inspectCmd renders a workbook the way the bot would, without Telegram
var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show the replies and reminders a course workbook produces",
	Long: `Reads a course workbook and prints the /help and /info replies, the
reminders that would be sent today and every row that was skipped.

Example:
  coursebot inspect data/123456.xlsx --date 01.09.2025`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDate, "date", "", "pretend today is this date (DD.MM.YYYY)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	now := time.Now().In(cfg.Location)
	if inspectDate != "" {
		d, err := time.ParseInLocation(format.DateLayout, inspectDate, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		now = time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, cfg.Location)
	}

	doc, err := course.Open(args[0], cfg.Location)
	if err != nil {
		return err
	}
	defer doc.Close()

	out := cmd.OutOrStdout()
	section(out, "sheets")
	for _, c := range []sheet.Canonical{sheet.Assessment, sheet.Assignments, sheet.Info} {
		name, err := doc.Sheet(c)
		if err != nil {
			fmt.Fprintf(out, "%s: missing, accepted names: %s\n", c, strings.Join(sheet.Aliases(c), ", "))
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", c, name)
	}

	weights, err := doc.Weights()
	if err != nil {
		return err
	}
	assignments, err := doc.Assignments()
	if err != nil {
		return err
	}

	section(out, "/help")
	fmt.Fprintln(out, format.Help(weights.Weights, assignments.Assignments, now))

	section(out, "/info")
	info, err := doc.Info()
	if err != nil {
		fmt.Fprintln(out, "error:", err)
	} else {
		fmt.Fprintln(out, format.Info(info.Items))
	}

	section(out, "reminders for "+now.Format(format.DateLayout))
	plan := reminder.Build(now, assignments.Assignments, cfg.Location)
	if plan.Empty() {
		fmt.Fprintln(out, "(none)")
	}
	for _, m := range plan.Messages() {
		fmt.Fprintln(out, m.Text)
	}

	skipped := append(append([]models.SkippedRow{}, weights.Skipped...), assignments.Skipped...)
	skipped = append(skipped, info.Skipped...)
	if len(skipped) > 0 {
		section(out, "skipped rows")
		for _, s := range skipped {
			fmt.Fprintln(out, s)
		}
	}
	return nil
}

func section(out io.Writer, title string) {
	fmt.Fprintf(out, "\n== %s ==\n", title)
}
