package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iwvelando/carcost/internal/config"
	"go.uber.org/zap"
)

// Marshal serializes a configuration into the saved state format.
func Marshal(conf *config.Configuration) ([]byte, error) {
	data, err := json.Marshal(conf)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// Unmarshal parses a saved state and migrates it to the current shape. The
// state must carry settings and a cars array.
func Unmarshal(data []byte) (*config.Configuration, error) {
	var probe struct {
		Settings json.RawMessage `json:"settings"`
		Cars     json.RawMessage `json:"cars"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if len(probe.Settings) == 0 || string(probe.Settings) == "null" {
		return nil, errors.New("state has no settings")
	}
	if len(probe.Cars) == 0 || probe.Cars[0] != '[' {
		return nil, errors.New("state has no cars array")
	}

	var conf config.Configuration
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	conf.Normalize()
	return &conf, nil
}

// Load reads the saved state. When nothing is saved, or what is saved cannot
// be read, the default state is returned instead.
func Load(ctx context.Context, logger *zap.Logger, p Persister) *config.Configuration {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := p.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to load saved state, using defaults",
				zap.String("op", "state.Load"),
				zap.Error(err),
			)
		}
		return config.DefaultConfiguration()
	}

	conf, err := Unmarshal(data)
	if err != nil {
		logger.Warn("saved state is unreadable, using defaults",
			zap.String("op", "state.Load"),
			zap.Error(err),
		)
		return config.DefaultConfiguration()
	}
	return conf
}
