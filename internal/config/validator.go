package config

import (
	"errors"
	"fmt"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
)

// Validator validates configuration and applies smart defaults,
// centralizing what would otherwise be scattered nil/zero checks
// across every caller.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and fills in defaults for fields
// left at their zero value. A zero DepthLimit is rejected by validation
// before any default is applied.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProject(&cfg.Project); err != nil {
		return wmlerrors.NewConfigInvalid("project", err)
	}
	if err := v.validatePreprocess(&cfg.Preprocess); err != nil {
		return wmlerrors.NewConfigInvalid("preprocess", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProject(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validatePreprocess(p *Preprocess) error {
	if p.DepthLimit <= 0 {
		return fmt.Errorf("DepthLimit must be positive, got %d", p.DepthLimit)
	}
	if p.DepthLimit > 1000 {
		return fmt.Errorf("DepthLimit should not exceed 1000, got %d", p.DepthLimit)
	}
	return nil
}

func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Preprocess.Defines == nil {
		cfg.Preprocess.Defines = map[string]string{}
	}
	if cfg.Preprocess.InitialTextdomain == "" {
		cfg.Preprocess.InitialTextdomain = "wesnoth"
	}
	if cfg.Preprocess.DepthLimit == 0 {
		cfg.Preprocess.DepthLimit = 40
	}
	if len(cfg.Preprocess.Include) == 0 {
		cfg.Preprocess.Include = []string{"**/*.cfg"}
	}
}

// ValidateConfig is a convenience function for quick validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
