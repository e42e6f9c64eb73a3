// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single acquisition:
//  1. [PlanView] : List the collection and reconcile it against the local folder
//  2. [MissingListView] : Browse the tracks that will be acquired
//  3. [ConfirmView] : Confirm the acquisition
//  4. [AcquireView] : Monitor per-track progress and the most recent log lines
//  5. [ResultView] : Display native, fetched and failed counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.AcquireEngine], providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
