// Package http exposes the session pipeline over a chi-based JSON API: the
// front end creates a session, loads the three spreadsheet inputs, reads the
// resolved label and metric lists, and triggers process/export runs. Errors
// are returned as structured JSON via internal/errors.
package http
