package stepper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
	"pgregory.net/rapid"
)

type fakeDevice struct {
	current  uint64
	max      uint64
	numSteps uint64
}

func (d fakeDevice) Current() uint64  { return d.current }
func (d fakeDevice) Max() uint64      { return d.max }
func (d fakeDevice) NumSteps() uint64 { return d.numSteps }

func (d fakeDevice) WithCurrent(current uint64) fakeDevice {
	d.current = current
	return d
}

const maxMax = 1 << 12

func drawDevice(t *rapid.T) fakeDevice {
	max := rapid.Uint64Range(1, maxMax).Draw(t, "max")
	return fakeDevice{
		current:  rapid.Uint64Range(0, max).Draw(t, "current"),
		max:      max,
		numSteps: rapid.Uint64Range(1, maxMax).Draw(t, "numSteps"),
	}
}

func walkUp(d fakeDevice) []uint64 {
	d = d.WithCurrent(0)
	seen := []uint64{0}
	for d.current < d.max {
		next := Up(d)
		if next <= d.current {
			break
		}
		d = d.WithCurrent(next)
		seen = append(seen, next)
	}
	return seen
}

func walkDown(d fakeDevice) []uint64 {
	d = d.WithCurrent(d.max)
	seen := []uint64{d.max}
	for d.current > 0 {
		next := Down(d)
		if next >= d.current {
			break
		}
		d = d.WithCurrent(next)
		seen = append(seen, next)
	}
	return seen
}

func reversed(s []uint64) []uint64 {
	r := slices.Clone(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return r
}

func TestUpNeverLower(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDevice(t)
		got := Up(d)
		if got < d.current {
			t.Fatalf("Up(%+v) = %d, below current", d, got)
		}
		if got > d.max {
			t.Fatalf("Up(%+v) = %d, above max", d, got)
		}
	})
}

func TestDownNeverHigher(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDevice(t)
		if got := Down(d); got > d.current {
			t.Fatalf("Down(%+v) = %d, above current", d, got)
		}
	})
}

func TestWalkSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDevice(t)
		up := walkUp(d)
		down := walkDown(d)
		if up[len(up)-1] != d.max {
			t.Fatalf("walking up %+v stopped at %d: %v", d, up[len(up)-1], up)
		}
		if down[len(down)-1] != 0 {
			t.Fatalf("walking down %+v stopped at %d: %v", d, down[len(down)-1], down)
		}
		if !slices.Equal(up, reversed(down)) {
			t.Fatalf("walks differ for %+v:\n up:   %v\n down: %v", d, up, down)
		}
	})
}

func TestBoundaries(t *testing.T) {
	for _, d := range []fakeDevice{
		{max: 1, numSteps: 1},
		{max: 255, numSteps: 75},
		{max: 96000, numSteps: 100},
	} {
		assert.Equal(t, uint64(1), Up(d.WithCurrent(0)), "%+v", d)
		assert.Equal(t, uint64(0), Down(d.WithCurrent(1)), "%+v", d)
		assert.Equal(t, uint64(0), Down(d.WithCurrent(0)), "%+v", d)
		assert.Equal(t, d.max, Up(d.WithCurrent(d.max)), "%+v", d)
	}
}

func TestThousandInTenSteps(t *testing.T) {
	d := fakeDevice{max: 1000, numSteps: 10}
	want := []uint64{0, 1, 3, 7, 15, 31, 63, 125, 251, 501, 1000}

	require.Equal(t, want, walkUp(d))
	require.Equal(t, reversed(want), walkDown(d))
}

func TestBetweenSteps(t *testing.T) {
	d := fakeDevice{max: 1000, numSteps: 10}
	for _, tt := range []struct {
		current  uint64
		up, down uint64
	}{
		{current: 2, up: 3, down: 1},
		{current: 100, up: 125, down: 63},
		{current: 999, up: 1000, down: 501},
	} {
		d := d.WithCurrent(tt.current)
		assert.Equal(t, tt.up, Up(d), "Up from %d", tt.current)
		assert.Equal(t, tt.down, Down(d), "Down from %d", tt.current)
	}
}

func TestTopStepSize(t *testing.T) {
	d := fakeDevice{current: 1000, max: 1000, numSteps: 75}
	below := Down(d)
	ratio := float64(d.max) / float64(below)
	assert.Greater(t, ratio, 1.09)
	assert.Less(t, ratio, 1.10)
}

func TestDenserNearBottom(t *testing.T) {
	walk := walkUp(fakeDevice{max: 4096, numSteps: 75})
	require.Greater(t, len(walk), 10)
	assert.Less(t, walk[2]-walk[1], walk[len(walk)-1]-walk[len(walk)-2])
}

func TestDegenerateModelsTerminate(t *testing.T) {
	for _, d := range []fakeDevice{
		{current: 5, max: 10, numSteps: 0},
		{current: 1, max: 1, numSteps: 3},
		{current: 3, max: 0, numSteps: 3},
	} {
		Up(d)
		Down(d)
	}
}
