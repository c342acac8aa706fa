// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The core services depend only on these
// contracts; any concrete provider is an adapter implementing them.
package driven
