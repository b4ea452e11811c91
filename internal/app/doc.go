// Package app wires the enrollment ranking service together and runs it.
//
// NewApplication loads the configuration, initializes logging and
// OpenTelemetry, builds the enrollment pipeline and its services, and
// mounts the dashboard, the JSON API, the health endpoints and the
// Prometheus scrape endpoint on a chi router.
//
// Run serves until the context is cancelled or the process receives SIGINT
// or SIGTERM, then shuts the server down gracefully, flushing telemetry and
// closing the log file.
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
