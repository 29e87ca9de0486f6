// Package handler contains the HTTP handlers of the board API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, query, JSON or multipart body)
//  2. Call the service layer with the acting user and plain values
//  3. Write the response through writeJSON / writeError
//
// Handlers hold no business rules; ownership, validation beyond shape, and
// transactions all live in internal/service.
package handler

import "net/http"

// HandleHello is the liveness endpoint.
//
// HTTP: GET /
func HandleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello"))
}
