package server

import (
	"encoding/json"

	"github.com/jmylchreest/tabtint/internal/engine"
	"github.com/jmylchreest/tabtint/internal/messaging"
)

// Frame kinds sent by the extension.
const (
	// KindMessage carries a runtime message from a page or the extension UI.
	KindMessage = "message"
	// KindResponse answers a request frame with the same id.
	KindResponse = "response"

	KindTabActivated   = "tab.activated"
	KindTabUpdated     = "tab.updated"
	KindTabAttached    = "tab.attached"
	KindTabRemoved     = "tab.removed"
	KindWindowFocused  = "window.focused"
	KindWindowRemoved  = "window.removed"
	KindSchemeSystem   = "scheme.system"
	KindSchemeOverride = "scheme.override"
)

// Frame kinds sent by the host.
const (
	// KindTabSend forwards a message to a tab and expects a response.
	KindTabSend = "tab.send"
	// KindTabNotify forwards a message to a tab without waiting.
	KindTabNotify = "tab.notify"
	// KindAddonLookup asks which add-on owns an extension host UUID.
	KindAddonLookup = "addon.lookup"
	// KindThemeUpdate carries a theme for browser.theme.update.
	KindThemeUpdate = "theme.update"
)

// Frame is the single envelope exchanged over the WebSocket.
type Frame struct {
	Kind     string            `json:"kind" validate:"required"`
	ID       uint64            `json:"id,omitempty"`
	Sender   *messaging.Sender `json:"sender,omitempty"`
	Tab      *engine.Tab       `json:"tab,omitempty"`
	TabID    int               `json:"tabId,omitempty"`
	WindowID int               `json:"windowId,omitempty"`
	Scheme   string            `json:"scheme,omitempty"`
	Payload  json.RawMessage   `json:"payload,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// AddonQuery is the payload of an addon.lookup request.
type AddonQuery struct {
	UUID string `json:"uuid"`
}

// AddonAnswer is the payload of an addon.lookup response.
type AddonAnswer struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}
