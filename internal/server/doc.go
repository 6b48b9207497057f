// Package server implements the HTTP server and handlers for the calendar
// API. It wires the routes to a store.Database, carries the request
// middleware (request ids, logging, CORS, compression), and hosts the
// optional snapshot exporter used by the production binary.
package server
