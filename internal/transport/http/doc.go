// Package http implements the HTTP handlers of the enrollment ranking
// service: the server-rendered dashboard, the JSON ranking API with its file
// exports, and the health and metrics endpoints.
//
// Handlers stay thin. They parse and validate the multipart upload, call
// the services package and translate errors into RFC 7807 problem details
// through the shared error handler.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Pipeline
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// Every ranking request carries its own workbook upload; nothing is kept
// between requests.
package http
