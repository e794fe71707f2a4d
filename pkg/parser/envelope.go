// Package parser deserializes upload events from the Kafka transport.
package parser

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/caldweld/TowerScoreBoardBot/pkg/extract"
)

// UploadEvent is one screenshot upload as published by the bot frontend. The
// extraction payload is optional: when absent the ingestor calls the
// extraction service itself using ImageURL.
type UploadEvent struct {
	ID          string          `json:"id"`
	PlayerKey   string          `json:"player_key"`
	DisplayName string          `json:"display_name"`
	Kind        extract.Kind    `json:"kind,omitempty"`
	ImageURL    string          `json:"image_url"`
	Extraction  *extract.Result `json:"extraction,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// ParseUploadEvent deserializes a Kafka message value into an UploadEvent
func ParseUploadEvent(data []byte) (UploadEvent, error) {
	var event UploadEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return UploadEvent{}, fmt.Errorf("failed to unmarshal upload envelope: %w", err)
	}

	// Validate required fields
	if event.ID == "" {
		return UploadEvent{}, fmt.Errorf("missing event ID")
	}
	if event.PlayerKey == "" {
		return UploadEvent{}, fmt.Errorf("missing player key")
	}
	if event.ImageURL == "" && event.Extraction == nil {
		return UploadEvent{}, fmt.Errorf("event has neither image URL nor extraction payload")
	}

	// A pre-extracted payload wins over the envelope hint; the hint is only
	// what the frontend guessed from the slash command used.
	if event.Extraction != nil && event.Extraction.Kind != "" {
		event.Kind = event.Extraction.Kind
	}

	if event.SubmittedAt.IsZero() {
		event.SubmittedAt = time.Now().UTC()
	}

	return event, nil
}
