package controller

import (
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"
)

// A Candidate is a directory that looks like a backlight controller.
type Candidate struct {
	Path          string
	MaxBrightness uint64
	Brightness    uint64
	// HasBrightness is false if the brightness attribute was unreadable.
	HasBrightness bool
}

// Candidates lists the controllers Find would choose between.
//
// If root is itself a controller, it is the only candidate. Otherwise every
// subdirectory of root with a readable, nonzero max_brightness is listed,
// largest max_brightness first; ties keep directory order, so the first
// entry is the one Find picks when its brightness is readable.
func Candidates(root string) ([]Candidate, error) {
	if c, ok := load(root, 1); ok {
		return []Candidate{{
			Path:          c.Path,
			MaxBrightness: c.maxBrightness,
			Brightness:    c.brightness,
			HasBrightness: true,
		}}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var cs []Candidate
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		max, ok := readAttr(filepath.Join(p, maxBrightnessFile))
		if !ok || max == 0 {
			continue
		}
		c := Candidate{Path: p, MaxBrightness: max}
		c.Brightness, c.HasBrightness = readAttr(filepath.Join(p, brightnessFile))
		cs = append(cs, c)
	}
	slices.SortStableFunc(cs, func(a, b Candidate) bool { return a.MaxBrightness > b.MaxBrightness })
	return cs, nil
}
