package engine

import (
	"context"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

// Message actions accepted by Dispatch.
const (
	ActionGetSettings     = "getSettings"
	ActionUpdateSettings  = "updateSettings"
	ActionGetStats        = "getStats"
	ActionScanDuplicates  = "scanDuplicates"
	ActionCloseDuplicates = "closeDuplicates"
)

// Message is a request from a UI surface.
type Message struct {
	Action   string       `json:"action"`
	Settings *dedup.Patch `json:"settings,omitempty"`
}

// Ack acknowledges a settings update.
type Ack struct {
	Success bool `json:"success"`
}

// Dispatch routes a message to the matching operation and returns its
// response value.
func (s *Service) Dispatch(ctx context.Context, msg Message) (any, error) {
	switch msg.Action {
	case ActionGetSettings:
		return s.GetSettings(ctx), nil
	case ActionUpdateSettings:
		var patch dedup.Patch
		if msg.Settings != nil {
			patch = *msg.Settings
		}
		return s.UpdateSettings(ctx, patch), nil
	case ActionGetStats:
		return s.GetStats(ctx)
	case ActionScanDuplicates:
		return s.ScanDuplicates(ctx)
	case ActionCloseDuplicates:
		return s.CloseDuplicates(ctx)
	case "":
		return nil, types.NewError(types.CodeValidation, "action is required", nil)
	default:
		return nil, types.NewError(types.CodeValidation, "unknown action: "+msg.Action, nil)
	}
}
