// Package services implements the business layer between the HTTP handlers
// and the enrollment pipeline.
//
// RankingService opens an uploaded workbook, runs the ranking pipeline over
// the requested periods and derives the filtered view with its charts, or
// writes the view in a download format. HealthService answers the health,
// readiness, liveness and version endpoints.
//
// Services hold no per-request state; every call works on the workbook it
// is given and is safe for concurrent use.
package services
