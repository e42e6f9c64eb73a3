package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/scsync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlanReady MsgKind = iota
	MsgProgressUpdate
	MsgAcquireComplete
)

type planReady struct {
	plan *tasks.AcquirePlan
	err  error
}

type acquireComplete struct {
	result *tasks.AcquireResult
	err    error
}

// planReadyMsg is the constructor for [MsgPlanReady]
func planReadyMsg(plan *tasks.AcquirePlan, err error) Msg {
	return Msg{kind: MsgPlanReady, data: planReady{plan, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// acquireCompleteMsg is the constructor for [MsgAcquireComplete]
func acquireCompleteMsg(result *tasks.AcquireResult, err error) Msg {
	return Msg{kind: MsgAcquireComplete, data: acquireComplete{result, err}}
}
