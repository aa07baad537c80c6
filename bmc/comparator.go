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

package bmc

// Result is the 5-valued outcome of comparing two Datasets (§4.1).
type Result int8

const (
	// BBetterTopo means B is equally good but reached via a better path.
	BBetterTopo Result = -2
	// BBetter means B is a strictly better clock.
	BBetter Result = -1
	// Equal means the comparator could not distinguish A from B.
	Equal Result = 0
	// ABetter means A is a strictly better clock.
	ABetter Result = 1
	// ABetterTopo means A is equally good but reached via a better path.
	ABetterTopo Result = 2
)

// Compare is the strategy signature both the standard and telecom profile
// comparators satisfy (§9 "function-pointer comparator").
type Compare func(a, b *Dataset) Result

// Dscmp2 is the same-grandmaster (topological) comparator: driven purely by
// stepsRemoved and the sender/receiver port identities (§4.1).
func Dscmp2(a, b *Dataset) Result {
	A, B := int(a.StepsRemoved), int(b.StepsRemoved)

	if A+1 < B {
		return ABetter
	}
	if B+1 < A {
		return BBetter
	}

	// The side one hop farther from the grandmaster disambiguates using its
	// own receiver/sender pair: if the port it heard the Announce on is not
	// the same port that is its upstream path, the extra hop is genuine.
	if A < B {
		switch diff := b.Receiver.Compare(b.Sender); {
		case diff < 0:
			return ABetter
		case diff > 0:
			return ABetterTopo
		default:
			return Equal // error-1
		}
	}
	if A > B {
		switch diff := a.Receiver.Compare(a.Sender); {
		case diff < 0:
			return BBetter
		case diff > 0:
			return BBetterTopo
		default:
			return Equal // error-1
		}
	}

	// A == B: break the tie on the announcing ports, then on receiver.
	switch diff := a.Sender.Compare(b.Sender); {
	case diff < 0:
		return ABetterTopo
	case diff > 0:
		return BBetterTopo
	}
	switch {
	case a.Receiver.PortNumber < b.Receiver.PortNumber:
		return ABetterTopo
	case a.Receiver.PortNumber > b.Receiver.PortNumber:
		return BBetterTopo
	}
	return Equal // error-2
}

// Dscmp is the standard-profile top-level comparator (§4.1).
func Dscmp(a, b *Dataset) Result {
	if a == nil && b == nil {
		return Equal
	}
	if a == nil {
		return BBetter
	}
	if b == nil {
		return ABetter
	}

	if a.Identity == b.Identity {
		return Dscmp2(a, b)
	}

	if r := cmpUint8(a.Priority1, b.Priority1); r != Equal {
		return r
	}
	if r := cmpUint8(uint8(a.Quality.ClockClass), uint8(b.Quality.ClockClass)); r != Equal {
		return r
	}
	if r := cmpUint8(uint8(a.Quality.ClockAccuracy), uint8(b.Quality.ClockAccuracy)); r != Equal {
		return r
	}
	if r := cmpUint16(a.Quality.OffsetScaledLogVariance, b.Quality.OffsetScaledLogVariance); r != Equal {
		return r
	}
	if r := cmpUint8(a.Priority2, b.Priority2); r != Equal {
		return r
	}
	if a.Identity < b.Identity {
		return ABetter
	}
	return BBetter
}

// TelecomDscmp is the telecom-profile comparator: it inserts LocalPriority
// between Priority2 and the final identity tiebreak. Once priorities and
// quality are exhausted, a clockClass of 127 or lower goes straight to
// Dscmp2; otherwise the smaller identity wins, with Dscmp2 used only when the
// identities are equal (§9 "function-pointer comparator").
func TelecomDscmp(a, b *Dataset) Result {
	if a == nil && b == nil {
		return Equal
	}
	if a == nil {
		return BBetter
	}
	if b == nil {
		return ABetter
	}

	if r := cmpUint8(uint8(a.Quality.ClockClass), uint8(b.Quality.ClockClass)); r != Equal {
		return r
	}
	if r := cmpUint8(uint8(a.Quality.ClockAccuracy), uint8(b.Quality.ClockAccuracy)); r != Equal {
		return r
	}
	if r := cmpUint16(a.Quality.OffsetScaledLogVariance, b.Quality.OffsetScaledLogVariance); r != Equal {
		return r
	}
	if r := cmpUint8(a.Priority2, b.Priority2); r != Equal {
		return r
	}
	if r := cmpUint8(a.LocalPriority, b.LocalPriority); r != Equal {
		return r
	}

	if a.Quality.ClockClass <= 127 {
		return Dscmp2(a, b)
	}
	if a.Identity == b.Identity {
		return Dscmp2(a, b)
	}
	if a.Identity < b.Identity {
		return ABetter
	}
	return BBetter
}

func cmpUint8(a, b uint8) Result {
	switch {
	case a < b:
		return ABetter
	case a > b:
		return BBetter
	default:
		return Equal
	}
}

func cmpUint16(a, b uint16) Result {
	switch {
	case a < b:
		return ABetter
	case a > b:
		return BBetter
	default:
		return Equal
	}
}
