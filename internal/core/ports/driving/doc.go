// Package driving provides interfaces consumed by user-facing adapters
// (primary/inbound ports): the CLI, the chat TUI and the watch loop.
package driving
