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

// Package ptp implements the wire-level data model of IEEE 1588-2019 PTP
// messages that the BMCA and Transparent Clock layers read and rewrite:
// clock/port identities, clock quality, the fixed-point correction field,
// and the event/general message bodies themselves.
package ptp

import (
	"encoding/binary"
	"fmt"
	"net"
)

// ClockIdentity uniquely identifies a PTP Instance. It is ordered byte-wise,
// which is the same as ordering the underlying uint64 numerically.
type ClockIdentity uint64

// String formats a ClockIdentity the way ptp4l's pmc client does.
func (c ClockIdentity) String() string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(c))
	return fmt.Sprintf("%02x%02x%02x.%02x%02x.%02x%02x%02x",
		b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7])
}

// NewClockIdentity builds a ClockIdentity from an EUI-48 or EUI-64 MAC address.
func NewClockIdentity(mac net.HardwareAddr) (ClockIdentity, error) {
	var b [8]byte
	switch len(mac) {
	case 6:
		b[0], b[1], b[2] = mac[0], mac[1], mac[2]
		b[3], b[4] = 0xff, 0xfe
		b[5], b[6], b[7] = mac[3], mac[4], mac[5]
	case 8:
		copy(b[:], mac)
	default:
		return 0, fmt.Errorf("unsupported MAC %v, must be EUI-48 or EUI-64", mac)
	}
	return ClockIdentity(binary.BigEndian.Uint64(b[:])), nil
}

// PortIdentity identifies a PTP port: the clock it belongs to plus a 1-based
// port number, carried on the wire as 8 bytes of ClockIdentity followed by 2
// bytes of big-endian port number (§6).
type PortIdentity struct {
	ClockIdentity ClockIdentity
	PortNumber    uint16
}

func (p PortIdentity) String() string {
	return fmt.Sprintf("%s-%d", p.ClockIdentity, p.PortNumber)
}

// Compare returns -1, 0 or 1 as p is less than, equal to, or greater than q.
// Ordering is first by ClockIdentity, then by PortNumber, matching §3.
func (p PortIdentity) Compare(q PortIdentity) int {
	switch {
	case p.ClockIdentity < q.ClockIdentity:
		return -1
	case p.ClockIdentity > q.ClockIdentity:
		return 1
	}
	switch {
	case p.PortNumber < q.PortNumber:
		return -1
	case p.PortNumber > q.PortNumber:
		return 1
	}
	return 0
}

// Less reports whether p sorts before q.
func (p PortIdentity) Less(q PortIdentity) bool { return p.Compare(q) < 0 }

// LAN bits occupy bits 15:14 of PortNumber under PRP (§6, §4.6). A cleared
// LAN tag is the value used by non-PRP ports and by interlink egress.
const (
	lanBitsMask   uint16 = 0b11 << 14
	LANBitsNone   uint16 = 0b00 << 14
	LANBitsRingA  uint16 = 0b10 << 14
	LANBitsRingB  uint16 = 0b11 << 14
)

// WithLANBits returns a copy of the identity with its PortNumber LAN-tag bits
// (15:14) replaced by bits.
func (p PortIdentity) WithLANBits(bits uint16) PortIdentity {
	p.PortNumber = (p.PortNumber &^ lanBitsMask) | (bits & lanBitsMask)
	return p
}

// LANBits extracts the PRP LAN tag from PortNumber.
func (p PortIdentity) LANBits() uint16 {
	return p.PortNumber & lanBitsMask
}

// ClockClass represents a PTP clockClass value (lower is better).
type ClockClass uint8

// Well-known clock classes. All of them except ClockClassSlaveOnly are 127 or
// lower, the range in which the state decision declares GRAND_MASTER or
// PASSIVE outright (§4.2 M1/P1); ClockClassSlaveOnly (255) is above it.
const (
	ClockClass6         ClockClass = 6
	ClockClass7         ClockClass = 7
	ClockClass13        ClockClass = 13
	ClockClass14        ClockClass = 14
	ClockClass52        ClockClass = 52
	ClockClass58        ClockClass = 58
	ClockClassSlaveOnly ClockClass = 255
)

// ClockAccuracy represents a PTP clockAccuracy value (lower is better).
type ClockAccuracy uint8

// ClockQuality is the (clockClass, clockAccuracy, offsetScaledLogVariance)
// triple advertised in an Announce message (§3). Lower is always better in
// every field.
type ClockQuality struct {
	ClockClass              ClockClass
	ClockAccuracy           ClockAccuracy
	OffsetScaledLogVariance uint16
}
