// Package models defines server-side data models persisted by the
// repositories and returned by the services.
package models
