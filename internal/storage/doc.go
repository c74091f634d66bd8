// Package storage opens the bot's SQLite database.
//
// It owns the connection settings and the schema; the post and auth
// packages are repositories on top of the returned *sql.DB.
package storage
