package rwse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupMembership(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure([][]string{
		{"their", "there"},
		{"to", "too", "two"},
	}))

	for _, word := range []string{"to", "too", "two"} {
		set, err := reg.Lookup(word)
		require.NoError(t, err)
		assert.Equal(t, []string{"to", "too", "two"}, set)
	}
	set, err := reg.Lookup("their")
	require.NoError(t, err)
	assert.Equal(t, []string{"their", "there"}, set)
	assert.Equal(t, 5, reg.Size())
}

func TestRegistryLookupBeforeConfigure(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lookup("there")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRegistryUnknownWord(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure([][]string{{"their", "there"}}))

	_, err := reg.Lookup("cars")
	assert.ErrorIs(t, err, ErrUnknownWord)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestRegistryEmptyConfigurationIsNotUnconfigured(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure(nil))

	// Configured with no sets: words are unknown, not "not configured".
	_, err := reg.Lookup("there")
	assert.ErrorIs(t, err, ErrUnknownWord)
}

func TestRegistryNormalizesWords(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure([][]string{{"Their", "THERE"}}))

	set, err := reg.Lookup("there,")
	require.NoError(t, err)
	assert.Equal(t, []string{"their", "there"}, set)
	assert.True(t, reg.Contains(" There"))
}

func TestRegistryRejectsSmallGroups(t *testing.T) {
	reg := NewRegistry()
	err := reg.Configure([][]string{{"their", "Their", " their "}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two")
}

func TestRegistryRejectsCrossGroupDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure([][]string{{"their", "there"}}))

	err := reg.Configure([][]string{
		{"to", "too"},
		{"too", "two"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one")

	// A rejected configuration leaves the previous one active.
	set, lookupErr := reg.Lookup("their")
	require.NoError(t, lookupErr)
	assert.Equal(t, []string{"their", "there"}, set)
}

func TestRegistryReconfigureReplacesEverything(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure([][]string{{"their", "there"}}))
	require.NoError(t, reg.Configure([][]string{{"accept", "except"}}))

	_, err := reg.Lookup("their")
	assert.ErrorIs(t, err, ErrUnknownWord)
	assert.Equal(t, [][]string{{"accept", "except"}}, reg.Sets())
}

func TestRegistrySetsReturnsCopies(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Configure([][]string{{"their", "there"}}))

	sets := reg.Sets()
	sets[0][0] = "mutated"
	fresh, err := reg.Lookup("there")
	require.NoError(t, err)
	assert.Equal(t, []string{"their", "there"}, fresh)
}
