/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ptp

import (
	"fmt"
	"math"
	"time"
)

// 2 ** 16, the fixed-point scale of TimeInterval and Correction.
const twoPow16 = 65536

// TimeInterval is a signed time interval in nanoseconds, scaled by 2**16, as
// carried by several PTP message fields.
type TimeInterval int64

// Nanoseconds decodes a TimeInterval to plain float64 nanoseconds.
func (t TimeInterval) Nanoseconds() float64 { return float64(t) / twoPow16 }

func (t TimeInterval) String() string {
	return fmt.Sprintf("TimeInterval(%.3fns)", t.Nanoseconds())
}

// NewTimeInterval builds a TimeInterval from plain nanoseconds.
func NewTimeInterval(ns float64) TimeInterval { return TimeInterval(ns * twoPow16) }

// correctionTooBig is the sentinel value meaning "correction too large to
// represent" — all bits except the most significant bit set (§6).
const correctionTooBig Correction = 0x7fffffffffffffff

// Correction is the PTP header correctionField: a signed 64-bit fixed-point
// nanosecond value scaled by 2**16 (§6). All arithmetic on it in the TC
// forwarder happens in this host-order representation; only the wire codec
// deals with network byte order.
type Correction int64

// TooBig reports whether the correction overflowed the representable range.
func (c Correction) TooBig() bool { return c == correctionTooBig }

// Nanoseconds decodes a Correction to plain float64 nanoseconds.
func (c Correction) Nanoseconds() float64 {
	if c.TooBig() {
		return math.Inf(1)
	}
	return float64(c) / twoPow16
}

// Duration converts a Correction to time.Duration, truncating fractional
// nanoseconds and treating TooBig as zero (matches facebook/time's Duration).
func (c Correction) Duration() time.Duration {
	if c.TooBig() {
		return 0
	}
	return time.Duration(c.Nanoseconds())
}

func (c Correction) String() string {
	if c.TooBig() {
		return "Correction(too big)"
	}
	return fmt.Sprintf("Correction(%.3fns)", c.Nanoseconds())
}

// NewCorrection builds a Correction from a time.Duration, saturating at
// correctionTooBig rather than overflowing.
func NewCorrection(d time.Duration) Correction {
	ns := float64(d.Nanoseconds())
	scaled := ns * twoPow16
	if scaled > float64(correctionTooBig) || scaled < -float64(correctionTooBig) {
		return correctionTooBig
	}
	return Correction(scaled)
}

// Add returns c shifted by d, saturating rather than overflowing into the
// TooBig sentinel. This is the primitive the TC forwarder uses to apply
// residence, peer delay, asymmetry and per-port tx/rx offsets (§4.5).
func (c Correction) Add(d time.Duration) Correction {
	if c.TooBig() {
		return c
	}
	o := NewCorrection(d)
	if o.TooBig() {
		return correctionTooBig
	}
	sum := c + o
	if (o > 0 && sum < c) || (o < 0 && sum > c) {
		return correctionTooBig
	}
	return sum
}

// AddCorrection sums two Corrections directly in their native fixed-point
// units. The one-step/two-step fusion in package tc needs this to combine a
// Sync's and a FollowUp's correction fields without a lossy round trip
// through time.Duration (§4.5, §9 "two-step <-> one-step fusion").
func (c Correction) AddCorrection(o Correction) Correction {
	if c.TooBig() || o.TooBig() {
		return correctionTooBig
	}
	return c + o
}
