// Package tasks orchestrates collection reconciliation and track acquisition with real-time
// progress reporting.
//
// # Core Operations
//
//  1. [SyncEngine.Sync] : reconcile a remote collection against a local folder
//     - Lists the collection with full metadata
//     - Scans the folder and builds the local index
//     - Classifies every remote track (url, tokens, unmatchable, missing)
//     - Writes the remote, local, joined and missing CSV artifacts
//
//  2. [AcquireEngine.Run] : acquire the tracks absent locally
//     - [AcquireEngine.Plan] lists (flat when no folder is given) and reconciles
//     - [AcquireEngine.Execute] runs the per-track state machine
//
// # Acquisition State Machine
//
// Each track moves Init → Inspect → {SkipNative | Fetch} → Terminal. A native download always
// wins, even when a purchase link exists; the link is informational only. Otherwise the fetcher
// is invoked exactly once. Every track yields exactly one record; info lookups that fail end in
// an "info_error:" record and panics in collaborators end in an "unexpected_error:" record.
// A listing failure yields a single "playlist_error:" record and aborts the run.
//
// The [Pacer] imposes a randomized delay between tracks, after successes and failures alike.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for
// advanced UI rendering. Updates use select with default to prevent blocking.
package tasks
