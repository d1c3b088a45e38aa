// Package stepper computes brightness steps on a quantized logarithmic scale.
//
// The scale for a device is fully determined by its maximum brightness and
// the number of steps: step s maps to max^(s/numSteps), truncated. Up walks
// to the next value on the scale and Down walks to the previous one, and
// walking the whole range in either direction visits the same values.
package stepper

import "math"

// Bounded is a snapshot of a brightness-capable device.
// WithCurrent returns a copy with a different current brightness and must
// not modify the receiver.
type Bounded[B any] interface {
	Current() uint64
	Max() uint64
	NumSteps() uint64
	WithCurrent(current uint64) B
}

// Up returns the next brightness above b's current value.
// The result is never below the current value and never above the maximum.
func Up[B Bounded[B]](b B) uint64 {
	cur := b.Current()
	if cur == 0 {
		return 1
	}
	n := int64(b.NumSteps())
	step := currentStep(b)
	next := cur
	for next <= cur && step <= n {
		step++
		next = brightnessAt(b, step)
	}
	if max := b.Max(); next > max {
		next = max
	}

	// Near the bottom of the range the scale can skip a value that lies
	// between cur and next; Down from next finds it.
	lower := Down(b.WithCurrent(next))
	if lower < next && lower > cur {
		return lower
	}
	return next
}

// Down returns the next brightness below b's current value.
// The result is never above the current value.
func Down[B Bounded[B]](b B) uint64 {
	cur := b.Current()
	if cur == 1 {
		return 0
	}
	step := currentStep(b)
	next := cur
	for next >= cur && step >= 1 {
		step--
		next = brightnessAt(b, step)
	}
	return next
}

// currentStep returns the smallest step whose brightness is at least the
// current brightness (treating 0 as 1), clamped to [0, NumSteps].
func currentStep[B Bounded[B]](b B) int64 {
	n := int64(b.NumSteps())
	cur := b.Current()
	if cur < 1 {
		cur = 1
	}
	f := math.Ceil(float64(n) * math.Log(float64(cur)) / math.Log(float64(b.Max())))
	step := n
	switch {
	case f < 0:
		step = 0
	case f < float64(n):
		step = int64(f)
	}
	// The log and pow computations can disagree by an ulp at exact step
	// boundaries; settle on the answer brightnessAt gives.
	for step > 0 && brightnessAt(b, step-1) >= cur {
		step--
	}
	for step < n && brightnessAt(b, step) < cur {
		step++
	}
	return step
}

// brightnessAt maps a step to max^(step/NumSteps), truncated and capped at max.
func brightnessAt[B Bounded[B]](b B, step int64) uint64 {
	max := float64(b.Max())
	v := math.Pow(max, float64(step)/float64(b.NumSteps()))
	if math.IsNaN(v) || v >= max {
		return b.Max()
	}
	return uint64(v)
}
