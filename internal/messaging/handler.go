package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tabtint/internal/meta"
	"github.com/jmylchreest/tabtint/internal/signal"
)

// ErrInvalidMessage wraps decode and validation failures.
var ErrInvalidMessage = errors.New("invalid message")

// ErrUnknownHeader is returned for headers the core does not handle.
var ErrUnknownHeader = errors.New("unknown message header")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Backend performs the work behind each message.
type Backend interface {
	// ScriptReady resolves the sender's tab now that its collector loaded.
	ScriptReady(ctx context.Context, sender Sender)
	// UpdateColour applies colour evidence pushed by a page.
	UpdateColour(ctx context.Context, sender Sender, bundle signal.Bundle)
	// CurrentScheme returns "light" or "dark".
	CurrentScheme() string
	// Meta returns the cached entry for a window.
	Meta(windowID int) (meta.Entry, bool)
	// ReloadPreferences reloads preferences and re-resolves every window.
	ReloadPreferences(ctx context.Context) error
}

// Handler decodes, validates and dispatches incoming messages.
type Handler struct {
	backend Backend
	logger  hclog.Logger
}

// NewHandler creates a handler.
func NewHandler(backend Backend, logger hclog.Logger) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Handler{backend: backend, logger: logger}
}

// Handle processes one message. The returned value is the response payload
// and is nil for messages without a response.
func (h *Handler) Handle(ctx context.Context, sender Sender, raw json.RawMessage) (any, error) {
	var env Envelope
	if err := decodeAndValidate(raw, &env); err != nil {
		return nil, err
	}
	h.logger.Trace("message received", "header", env.Header, "tab", sender.TabID, "window", sender.WindowID)

	switch env.Header {
	case HeaderScriptReady:
		h.backend.ScriptReady(ctx, sender)
		return nil, nil

	case HeaderUpdateColour:
		var msg UpdateColour
		if err := decodeAndValidate(raw, &msg); err != nil {
			return nil, err
		}
		h.backend.UpdateColour(ctx, sender, msg.Colour)
		return nil, nil

	case HeaderSchemeRequest:
		return h.backend.CurrentScheme(), nil

	case HeaderMetaRequest:
		var msg MetaRequest
		if err := decodeAndValidate(raw, &msg); err != nil {
			return nil, err
		}
		entry, ok := h.backend.Meta(*msg.WindowID)
		if !ok {
			return nil, nil
		}
		return entry.JSON(), nil

	case HeaderPrefChanged, HeaderInitRequest:
		if err := h.backend.ReloadPreferences(ctx); err != nil {
			return nil, fmt.Errorf("reload preferences: %w", err)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeader, env.Header)
	}
}

func decodeAndValidate[T any](raw json.RawMessage, out *T) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s %s", ErrInvalidMessage, verrs[0].Field(), formatValidationMessage(verrs[0]))
		}
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return nil
}

func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
