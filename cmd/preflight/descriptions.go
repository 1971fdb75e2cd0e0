package main

const (
	// NOTE: change version from here
	VERSION = "v0.1.0"
)

const DESCRIPTION = `
Preflight warms an application's start-up resources ahead of need.
It loads a manifest of URLs grouped by importance, admits them
through a priority-aware scheduler with bounded concurrency, and
retries transient failures so the critical path is ready first.
`

const (
	RunDescription = `The run command executes the staged preload described
by a JSON manifest: the critical group must fully succeed
before the essential and non-critical groups dispatch.

Example:
        preflight run manifest.json

`
	ScanDescription = `The scan command parses an HTML document and prints
preload descriptors for its external scripts, stylesheets,
preload links and images, ready to paste into a manifest.

Example:
        preflight scan index.html --base https://example.com/

`
	ReportDescription = `The report command displays recent load outcomes
recorded in the settlement journal by earlier runs.

Example:
        preflight report --journal preflight.db

`
)
