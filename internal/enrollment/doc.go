// Package enrollment turns a multi-sheet enrollment workbook into a single
// ranked table of course offerings.
//
// # Pipeline
//
// Data flows in one direction:
//
// 1. Loader: LoadPeriod reads the sheet named after a period and projects the
// six composite key columns plus the enrollment column.
// 2. Merger: Merge outer-joins the period tables on the composite key, coerces
// the measures to numbers, sums them into a total and ranks by total.
// 3. Pipeline: Pipeline.Run drives both over the requested periods, skipping
// periods whose sheet is missing or malformed.
//
// # Usage
//
//	wb, err := enrollment.OpenWorkbookFile("matriculas.xlsx")
//	if err != nil {
//	    return err
//	}
//	defer wb.Close()
//
//	result, err := enrollment.NewPipeline(logger).Run(ctx, wb, []string{"2023", "2022"})
//	if err != nil {
//	    return err
//	}
//	for _, skipped := range result.Skipped {
//	    logger.Warn("period skipped", "period", skipped.Period, "reason", skipped.Message)
//	}
//
// # Errors
//
// Skipped periods are reported in Result.Skipped, not as errors. Run fails
// with ErrNoPeriodsSelected when no period is requested, with a
// *NoValidPeriodsError when none loads, and with an error wrapping
// ErrProcessing for anything unexpected.
package enrollment
