package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviex/internal/browse"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/tasks"
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
	MsgStartupChecked MsgKind = iota
	MsgListUpdated
	MsgDetailsLoaded
	MsgWishlistLoaded
	MsgSyncProgress
	MsgSyncComplete
)

// startupCheckedMsg is the constructor for [MsgStartupChecked]
func startupCheckedMsg(state browse.StartupState) Msg {
	return Msg{kind: MsgStartupChecked, data: state}
}

// listUpdatedMsg is the constructor for [MsgListUpdated]. The list state itself is
// read back from the holder; only the error travels with the message.
func listUpdatedMsg(err error) Msg {
	return Msg{kind: MsgListUpdated, data: err}
}

// detailsLoadedMsg is the constructor for [MsgDetailsLoaded]
func detailsLoadedMsg(err error) Msg {
	return Msg{kind: MsgDetailsLoaded, data: err}
}

// wishlistLoadedMsg is the constructor for [MsgWishlistLoaded]
func wishlistLoadedMsg(err error) Msg {
	return Msg{kind: MsgWishlistLoaded, data: err}
}

// errOf extracts the error carried by a message, if any.
func (m Msg) errOf() error {
	err, _ := m.data.(error)
	return err
}

// syncProgressMsg is the constructor for [MsgSyncProgress]
func syncProgressMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgSyncProgress, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(result models.Result[tasks.SyncReport]) Msg {
	return Msg{kind: MsgSyncComplete, data: result}
}
