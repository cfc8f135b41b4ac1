// Package main hosts the cutroom CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the whole post-production flow:
// registering recording sessions, running audio offset detection, reviewing
// and correcting sync results, editing the canonical cut list, and driving
// render jobs against the farm. It centralizes configuration resolution,
// store access, and logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
