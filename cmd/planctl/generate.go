package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/service"
)

type generateOptions struct {
	file       string
	output     string
	workHours  float64
	sleepHours float64
	workStart  string
	verbose    bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a timetable from a YAML plan file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the plan file (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().Float64Var(&opts.workHours, "work-hours", 8, "Work hours used when the plan file sets none")
	cmd.Flags().Float64Var(&opts.sleepHours, "sleep-hours", 8, "Sleep hours used when the plan file sets none")
	cmd.Flags().StringVar(&opts.workStart, "work-start", "09:00", "Work start used when the plan file sets none")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log scheduler decisions to stderr")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, opts *generateOptions) error {
	switch opts.output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pf, err := loadPlanFile(opts.file)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
	}

	svc := service.NewPlannerService(nil, nil, nil, nil, nil, nil, service.PlannerOptions{
		DefaultWorkStart:  opts.workStart,
		DefaultWorkHours:  opts.workHours,
		DefaultSleepHours: opts.sleepHours,
	}, nil, logger)

	resp, err := svc.Generate(ctx, pf.request())
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}

	if opts.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return printPlan(out, resp)
}

func printPlan(out io.Writer, resp *dto.GeneratePlanResponse) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, day := range resp.Days {
		fmt.Fprintf(tw, "%s %s\n", day.Date, day.Weekday)
		for _, b := range day.Blocks {
			fmt.Fprintf(tw, "  %s-%s\t%s\t%s\n", b.Start, b.End, b.Activity, b.Type)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, t := range resp.Unscheduled {
		day := t.TargetDay
		if day == "" {
			day = "any day"
		}
		fmt.Fprintf(out, "warning: %q (%d slots, %s) could not be scheduled\n", t.Name, t.DurationSlots, day)
	}
	for _, e := range resp.SkippedEvents {
		fmt.Fprintf(out, "warning: event %q on %s at %s does not fit its day\n", e.Name, e.Date, e.Start)
	}
	return nil
}
