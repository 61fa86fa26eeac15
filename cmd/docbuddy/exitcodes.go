package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no workspace, no index)
	ExitDataError   = 3 // Data error (empty document, model backend unavailable)
)
