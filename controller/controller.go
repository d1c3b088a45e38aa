// Package controller locates backlight controllers in a sysfs-style
// directory tree and reads and writes their brightness.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/cespare/loglux/stepper"
)

// DefaultRoot is where most Linux systems expose backlight controllers.
const DefaultRoot = "/sys/class/backlight"

const (
	maxBrightnessFile = "max_brightness"
	brightnessFile    = "brightness"

	// Attribute files hold a single small integer.
	attrBufSize = 32
)

// ErrNotFound is returned by Find when no usable controller exists.
var ErrNotFound = errors.New("no backlight controller found")

// ErrNotify is wrapped by errors from Apply's notification step.
var ErrNotify = errors.New("notification failed")

// notifyCmd is a variable for testing.
var notifyCmd = "notify-send"

// A Controller is a snapshot of one backlight controller's state.
type Controller struct {
	Path string

	maxBrightness uint64
	brightness    uint64
	numSteps      uint64
}

var _ stepper.Bounded[Controller] = Controller{}

func (c Controller) Current() uint64  { return c.brightness }
func (c Controller) Max() uint64      { return c.maxBrightness }
func (c Controller) NumSteps() uint64 { return c.numSteps }

func (c Controller) WithCurrent(brightness uint64) Controller {
	c.brightness = brightness
	return c
}

// StepUp returns the brightness one step above the current one.
func (c Controller) StepUp() uint64 { return stepper.Up(c) }

// StepDown returns the brightness one step below the current one.
func (c Controller) StepDown() uint64 { return stepper.Down(c) }

// Find selects a controller.
//
// If root is itself a controller (it has readable max_brightness and
// brightness attributes), that controller is used. Otherwise each
// subdirectory of root is a candidate and the one with the largest
// max_brightness wins; ties go to the first one in directory order.
func Find(root string, numSteps uint64) (Controller, error) {
	if c, ok := load(root, numSteps); ok {
		return c, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return Controller{}, fmt.Errorf("%w in %s: %s", ErrNotFound, root, err)
	}
	var best string
	var bestMax uint64
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		max, ok := readAttr(filepath.Join(p, maxBrightnessFile))
		if ok && max > bestMax {
			best = p
			bestMax = max
		}
	}
	if best == "" {
		return Controller{}, fmt.Errorf("%w in %s", ErrNotFound, root)
	}
	cur, ok := readAttr(filepath.Join(best, brightnessFile))
	if !ok {
		return Controller{}, fmt.Errorf("%w: cannot read brightness of %s", ErrNotFound, best)
	}
	return newController(best, bestMax, cur, numSteps), nil
}

func load(path string, numSteps uint64) (Controller, bool) {
	max, ok := readAttr(filepath.Join(path, maxBrightnessFile))
	if !ok || max == 0 {
		return Controller{}, false
	}
	cur, ok := readAttr(filepath.Join(path, brightnessFile))
	if !ok {
		return Controller{}, false
	}
	return newController(path, max, cur, numSteps), true
}

func newController(path string, max, cur, numSteps uint64) Controller {
	if cur > max {
		cur = max
	}
	return Controller{
		Path:          path,
		maxBrightness: max,
		brightness:    cur,
		numSteps:      numSteps,
	}
}

// Name is the controller's directory name, such as "intel_backlight".
func (c Controller) Name() string {
	return filepath.Base(c.Path)
}

// Percent expresses b as an integer percentage of the maximum brightness.
func (c Controller) Percent(b uint64) uint64 {
	if c.maxBrightness == 0 {
		return 0
	}
	return b * 100 / c.maxBrightness
}

// SetBrightness writes b to the controller's brightness attribute.
func (c Controller) SetBrightness(b uint64) error {
	f, err := os.OpenFile(filepath.Join(c.Path, brightnessFile), os.O_TRUNC|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(strconv.FormatUint(b, 10))); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Notify shows a desktop notification with the controller's name and b as
// a percentage. Notifications with the same synchronous tag replace each
// other instead of stacking.
func (c Controller) Notify(ctx context.Context, b uint64) error {
	cmd := exec.CommandContext(ctx, notifyCmd,
		c.Name(),
		"-h", fmt.Sprintf("int:value:%d", c.Percent(b)),
		"-h", "string:synchronous:volume",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return fmt.Errorf("%s failed: %s", notifyCmd, bytes.TrimSpace(stderr.Bytes()))
	}
	if err != nil {
		return fmt.Errorf("%s failed: %s", notifyCmd, err)
	}
	return nil
}

// Apply makes b the controller's brightness. If b differs from the current
// brightness it is written and, when notify is set, a notification is
// shown; an unchanged brightness is neither written nor announced.
// A failed notification is reported wrapping ErrNotify after the write has
// already happened.
func (c Controller) Apply(ctx context.Context, b uint64, notify bool) error {
	if b == c.brightness {
		return nil
	}
	if err := c.SetBrightness(b); err != nil {
		return fmt.Errorf("cannot set brightness of %s: %s", c.Path, err)
	}
	if !notify {
		return nil
	}
	if err := c.Notify(ctx, b); err != nil {
		return fmt.Errorf("%w: %s", ErrNotify, err)
	}
	return nil
}

// readAttr reads a non-negative integer attribute. Any failure to open,
// read or parse the file is reported as !ok.
func readAttr(path string) (n uint64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	buf := make([]byte, attrBufSize)
	k, _ := f.ReadAt(buf, 0)
	n, err = strconv.ParseUint(string(bytes.TrimSpace(buf[:k])), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
