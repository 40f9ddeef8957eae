// Package httputil provides the JSON response helpers shared by the HTTP
// handlers.
//
// Failures use the envelope {"success": false, "error": "..."} that the
// enrollment form and admin screens already parse; successful responses are
// written by the handler with "success": true alongside its own fields.
package httputil
