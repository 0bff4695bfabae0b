package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
)

func TestValidateAndSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{
		Project:    Project{Root: "/test/root"},
		Preprocess: Preprocess{DepthLimit: 10},
	}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.Equal(t, 10, cfg.Preprocess.DepthLimit)
	assert.Equal(t, "wesnoth", cfg.Preprocess.InitialTextdomain)
	assert.NotNil(t, cfg.Preprocess.Defines)
	assert.Equal(t, []string{"**/*.cfg"}, cfg.Preprocess.Include)
}

func TestValidateProjectRejectsEmptyRoot(t *testing.T) {
	err := NewValidator().validateProject(&Project{})
	require.Error(t, err)
}

func TestValidatePreprocessRejectsNonPositiveDepthLimit(t *testing.T) {
	err := NewValidator().validatePreprocess(&Preprocess{DepthLimit: 0})
	require.Error(t, err)
}

func TestValidatePreprocessRejectsExcessiveDepthLimit(t *testing.T) {
	err := NewValidator().validatePreprocess(&Preprocess{DepthLimit: 100000})
	require.Error(t, err)
}

func TestValidateAndSetDefaultsWrapsFailureAsConfigInvalid(t *testing.T) {
	cfg := &Config{Project: Project{}, Preprocess: Preprocess{DepthLimit: 1}}

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)

	var we *wmlerrors.WMLError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, wmlerrors.KindConfigInvalid, we.Kind)
}
