// Package server implements the web interface of the setup service: the
// signed-in pages, the workflow and state administration views, the JSON
// health check, and a WebSocket feed of setup changes
package server
