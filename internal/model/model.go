package model

import (
	"github.com/LeonardoBeccarini/farm-node/internal/model/entities"
	"github.com/LeonardoBeccarini/farm-node/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	Identity   = entities.Identity
	Topics     = entities.Topics
	Thresholds = entities.Thresholds
	Reading    = entities.Reading

	Telemetry = messages.Telemetry
	Control   = messages.Control
	Status    = messages.Status
	Command   = messages.Command
)

var ErrInvalidThresholds = entities.ErrInvalidThresholds

func TopicsFor(id Identity) Topics { return entities.TopicsFor(id) }
