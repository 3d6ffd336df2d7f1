// Package connectors groups the external API clients that consume sessions.
// The google subpackage builds authorized Calendar, Gmail and Sheets clients
// from lifecycle tokens and wraps each API in a small typed facade.
package connectors
