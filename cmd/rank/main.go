// Command rank merges the selected period sheets of an enrollment workbook
// and writes the ranked table as an aligned text table, CSV or XLSX.
//
//	rank -in matriculas.xlsx -periods 2023,2022 -min-total 0 -format csv -out ranking.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"enrollrank/internal/config"
	"enrollrank/internal/enrollment"
	"enrollrank/internal/exporter"
	"enrollrank/internal/infrastructure"
	customMiddleware "enrollrank/internal/middleware"
	"enrollrank/internal/services"
	"enrollrank/internal/validation"
)

type options struct {
	in          string
	out         string
	periods     string
	courseTypes string
	format      string
	logLevel    string
	minTotal    int64
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("rank failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg config.DashboardConfig, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "enrollment workbook (.xlsx), one sheet per period")
	fs.StringVar(&opts.out, "out", "", "output file (defaults to stdout)")
	fs.StringVar(&opts.periods, "periods", strings.Join(cfg.DefaultPeriods, ","), "comma separated periods to merge")
	fs.StringVar(&opts.courseTypes, "course-type", "", "comma separated course types to keep (defaults to all)")
	fs.StringVar(&opts.format, "format", string(exporter.FormatTable), "output format: table, csv or xlsx")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.Int64Var(&opts.minTotal, "min-total", cfg.MinTotal, "minimum total enrollments")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.in == "" {
		fs.Usage()
		return nil, errors.New("-in is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts, err := parseFlags(args, cfg.Dashboard, stderr)
	if err != nil {
		return err
	}
	logger := infrastructure.NewLogger(stderr, opts.logLevel)
	// Every record of one run shares a trace_id.
	ctx = infrastructure.EnsureTraceID(ctx)

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	req := services.RankingRequest{
		Periods:  splitList(opts.periods),
		MinTotal: opts.minTotal,
	}
	if opts.courseTypes != "" {
		req.CourseTypes = splitList(opts.courseTypes)
	}
	if err := customMiddleware.NewValidator(logger).ValidateStruct(req); err != nil {
		return err
	}

	if err := validation.NewFileValidator(logger).ValidateWorkbookFile(opts.in); err != nil {
		return err
	}

	wb, err := enrollment.OpenWorkbookFile(opts.in)
	if err != nil {
		return err
	}
	defer wb.Close()

	service := services.NewRankingService(enrollment.NewPipeline(logger), cfg.Dashboard, logger)
	result, err := service.RankWorkbook(ctx, wb, req)
	if err != nil {
		var noValid *enrollment.NoValidPeriodsError
		if errors.As(err, &noValid) {
			for _, f := range noValid.Failures {
				logger.ErrorContext(ctx, "period skipped", slog.String("period", f.Period), slog.String("reason", f.Message))
			}
		}
		return err
	}
	for _, f := range result.Skipped {
		logger.WarnContext(ctx, "period skipped", slog.String("period", f.Period), slog.String("reason", f.Message))
	}

	writer, err := exporter.New(format, logger)
	if err != nil {
		return err
	}

	out := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	if err := writer.Write(out, result.Columns, result.View.Rows); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}

	logger.InfoContext(ctx, "ranking written",
		slog.Any("loaded", result.Loaded),
		slog.Int("rows", len(result.View.Rows)),
		slog.Int64("min_total", result.View.Filter.MinTotal),
		slog.String("format", string(format)))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
