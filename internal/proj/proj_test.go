package proj

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		lon, lat float64
	}{
		{"origin", 0, 0},
		{"st louis", -90.2940248, 38.6521540},
		{"southern hemisphere", 151.2093, -33.8688},
		{"antimeridian", 180, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pt, err := Project(tc.lon, tc.lat)
			require.NoError(t, err)

			back := Unproject(pt.X(), pt.Y())
			assert.InDelta(t, tc.lon, back.Lon(), 1e-9)
			assert.InDelta(t, tc.lat, back.Lat(), 1e-9)
		})
	}
}

func TestProjectMetersAtEquator(t *testing.T) {
	t.Parallel()

	// One degree of longitude at the equator is ~111319.49 m in EPSG:3857.
	pt, err := Project(1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 111319.49, pt.X(), 0.01)
	assert.InDelta(t, 0, pt.Y(), 1e-6)
}

func TestProjectOutOfRange(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name     string
		lon, lat float64
	}{
		{"lat too high", 0, 90.0001},
		{"lat too low", 0, -91},
		{"lon too high", 180.5, 0},
		{"lon too low", -200, 45},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Project(tc.lon, tc.lat)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))
		})
	}
}

func TestProjectClampsPoles(t *testing.T) {
	t.Parallel()

	limit, err := Project(0, maxLat)
	require.NoError(t, err)

	for _, lat := range []float64{85.1, 89.999, 90} {
		pt, err := Project(0, lat)
		require.NoError(t, err)
		assert.False(t, math.IsInf(pt.Y(), 0), "lat=%f", lat)
		assert.InDelta(t, limit.Y(), pt.Y(), 1e-9, "lat=%f", lat)
	}

	south, err := Project(0, -90)
	require.NoError(t, err)
	assert.InDelta(t, -limit.Y(), south.Y(), 0.1)
}

func TestProjectLine(t *testing.T) {
	t.Parallel()

	line, err := ProjectLine(orb.LineString{{0, 0}, {0.001, 0}})
	require.NoError(t, err)
	require.Len(t, line, 2)
	assert.Greater(t, line[1].X(), line[0].X())

	_, err = ProjectLine(orb.LineString{{0, 0}, {1000, 0}})
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
