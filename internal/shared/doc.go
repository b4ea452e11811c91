// Package shared holds code used across the enrollment ranking packages that
// does not belong to any one layer.
//
// The testutil subpackage provides the test helpers: a slog handler that
// captures records for assertions, and builders for enrollment workbooks so
// loader, pipeline, handler and CLI tests share one fixture format.
//
//	wb := testutil.NewWorkbook(t, testutil.Sheet{
//	    Name: "2023",
//	    Rows: [][]any{
//	        testutil.EnrollmentHeader(),
//	        testutil.EnrollmentRow("UFX", "Campus A", "Bacharelado", "Direito", "Presencial", "Presencial", 120),
//	    },
//	})
package shared
