package engine

import (
	"context"

	"github.com/google/uuid"
)

// ActionRecord describes one state transition for external history capture.
type ActionRecord struct {
	GameID      uuid.UUID              `json:"game_id"`
	ActionIndex int                    `json:"action_index"`
	Player      string                 `json:"player,omitempty"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// Recorder receives every action the orchestrator applies, in order. A nil
// Recorder on the game disables recording; a failing Recorder is logged and
// ignored so history capture can never alter a game's outcome.
type Recorder interface {
	Record(ctx context.Context, rec ActionRecord) error
}
