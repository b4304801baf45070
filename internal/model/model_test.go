package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrgan(t *testing.T) {
	t.Parallel()

	for _, o := range AllOrgans() {
		got, err := ParseOrgan(string(o))
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}

	_, err := ParseOrgan("spleen")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownOrgan))
}

func TestFingerprint_Deterministic(t *testing.T) {
	t.Parallel()

	a := Fingerprint(OrganLungs, LungsMetrics{AlertCount: 320, ActiveFires: 41, MeanFRP: 12.5})
	b := Fingerprint(OrganLungs, LungsMetrics{MeanFRP: 12.5, ActiveFires: 41, AlertCount: 320})
	assert.Equal(t, a, b, "field assignment order must not affect the key")
	assert.Len(t, a, 64)
}

func TestFingerprint_DistinguishesOrganAndValues(t *testing.T) {
	t.Parallel()

	base := Fingerprint(OrganLungs, LungsMetrics{AlertCount: 100})
	assert.NotEqual(t, base, Fingerprint(OrganLungs, LungsMetrics{AlertCount: 101}))
	assert.NotEqual(t, base, Fingerprint(OrganHeart, HeartMetrics{PH: 8.1}))
}

func TestNormalizeLocator(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Amazônia  ":       "amazonia",
		"AMAZONIA":           "amazonia",
		"Great  Barrier\tReef": "great barrier reef",
		"São Paulo":          "sao paulo",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLocator(in), "input %q", in)
	}
}

func TestSnapshotSynthetic(t *testing.T) {
	t.Parallel()

	s := MetricSnapshot{Source: SourceSynthetic}
	assert.True(t, s.Synthetic())
	s.Source = "nasa_firms"
	assert.False(t, s.Synthetic())
}

func TestStatusValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusInflamed.Valid())
	assert.True(t, StatusHealthy.Valid())
	assert.False(t, Status("FEVERISH").Valid())
}
