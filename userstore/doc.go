// Package userstore provides verifact.UserStore implementations: an
// in-memory store for tests and single-process demos, and a PostgreSQL
// store over database/sql with the pgx driver.
//
// Emails are stored as given; the engine lowercases them before every call.
package userstore
