// Package main hosts the dripfeed CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the long-running daemon (run), operator
// conveniences (tick, send, subscribers, progress), and configuration
// scaffolding (config init/show/validate). It centralizes configuration
// resolution and logger setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
