package kvstore

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// FileConfig holds settings for the "file" backend.
type FileConfig struct {
	Dir string `mapstructure:"dir" default:"~/.hearo" validate:"required"`
}

// New creates a store for the given backend type and its raw settings.
func New(backend string, settings map[string]any) (Store, error) {
	switch backend {
	case "memory":
		zlog.Warn().Msg("kvstore: using memory backend, library state will not persist")
		return NewMemoryStore(), nil

	case "file", "":
		var cfg FileConfig
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to decode file store settings")
		}
		if err := defaults.Set(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to set defaults")
		}
		if err := validator.New().Struct(cfg); err != nil {
			return nil, errors.Wrap(err, "file store settings validation failed")
		}
		return NewFileStore(cfg.Dir)

	default:
		return nil, errors.Newf("unsupported storage type: %s", backend)
	}
}
