package solver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Settings tune the solver. They are read once, when a model is created.
type Settings struct {
	// SwapOnPassivate makes passive propagators leave the live propagator
	// lists of their variables, so later events skip them.
	SwapOnPassivate bool `toml:"swap_on_passivate" yaml:"swap_on_passivate"`

	// CheckDeclaredConstraints records every constructed constraint so that
	// constraints never posted, reified nor ignored can be reported.
	CheckDeclaredConstraints bool `toml:"check_declared_constraints" yaml:"check_declared_constraints"`

	// SortPropagatorActivation runs the initial propagation in increasing
	// priority order instead of posting order.
	SortPropagatorActivation bool `toml:"sort_propagator_activation" yaml:"sort_propagator_activation"`

	// CloneVariableArray makes propagators copy the variable slice they are
	// given.
	CloneVariableArray bool `toml:"clone_variable_array" yaml:"clone_variable_array"`

	// DefaultPrefix starts the names generated for anonymous variables.
	DefaultPrefix string `toml:"default_prefix" yaml:"default_prefix"`

	// EngineHybridization selects how variable events reach the propagators,
	// see Engine.
	EngineHybridization int `toml:"engine_hybridization" yaml:"engine_hybridization"`

	// WarnUser logs a warning when a search starts while declared
	// constraints are still free.
	WarnUser bool `toml:"warn_user" yaml:"warn_user"`
}

// DefaultSettings returns the settings used by NewModel.
func DefaultSettings() Settings {
	return Settings{
		SwapOnPassivate:          false,
		CheckDeclaredConstraints: true,
		SortPropagatorActivation: true,
		CloneVariableArray:       true,
		DefaultPrefix:            "TMP_",
		EngineHybridization:      0,
		WarnUser:                 true,
	}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if s.EngineHybridization < 0 || s.EngineHybridization > 2 {
		return newSolverError(ErrCodeInvalidArgument, "engine_hybridization must be 0, 1 or 2, got %d", s.EngineHybridization)
	}
	return nil
}

// LoadSettings reads settings from a TOML (.toml) or YAML (.yaml, .yml) file.
// Keys missing from the file keep their default value.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, errors.Wrapf(err, "reading settings %s", path)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, &s)
	default:
		return s, newSolverError(ErrCodeInvalidArgument, "unsupported settings format %q", ext)
	}
	if err != nil {
		return s, errors.Wrapf(err, "decoding settings %s", path)
	}
	return s, s.Validate()
}
