// Package memstore holds in-memory store implementations used by tests and
// by local development without a running MongoDB.
package memstore
