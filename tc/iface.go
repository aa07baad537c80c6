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

package tc

import (
	"time"

	"github.com/westermo/gptp/bmc"
	ptp "github.com/westermo/gptp/ptp"
)

// SendKind selects which transport channel a message goes out on (§6).
type SendKind uint8

const (
	// SendEvent is the timestamped event channel (319/UDP equivalent).
	SendEvent SendKind = iota
	// SendGeneral is the untimestamped general channel (320/UDP equivalent).
	SendGeneral
	// SendDeferEvent is the event channel used when the transmit timestamp
	// is collected in a second pass after the send (two-step forwarding).
	SendDeferEvent
)

// DelayMechanism is how a port measures propagation delay to its peer.
type DelayMechanism uint8

const (
	DelayE2E DelayMechanism = iota
	DelayP2P
)

// Event is a port dispatch event the core can raise (§7). FAULT_DETECTED is
// the only one this package originates.
type Event uint8

const (
	EventFaultDetected Event = iota
)

// Transport is the external send/tx-timestamp collaborator (§6 "Transport
// (consumed)"); socket and hardware access live entirely outside this core.
type Transport interface {
	// Send transmits msg on port via the given channel, returning the byte
	// count written.
	Send(port uint16, kind SendKind, msg ptp.Message) (int, error)
	// RecvTxTimestamp retrieves the hardware transmit timestamp for the
	// message most recently sent on port.
	RecvTxTimestamp(port uint16, msg ptp.Message) (time.Time, error)
}

// Timer is the external monotonic-clock/rate-ratio collaborator (§6
// "Timer/Clock (consumed)").
type Timer interface {
	MonotonicNow() time.Time
	RateRatio() float64
}

// Clock is the port/clock introspection surface the TC engine consumes
// (§6 "Port introspection (consumed)"). An implementation wraps whatever
// port and clock objects the top-level event loop owns; this package never
// mutates clock or port state directly, only messages.
type Clock interface {
	// Ports lists every port id on the clock, in the order the forwarding
	// loop should visit them.
	Ports() []uint16

	PortState(port uint16) bmc.PortState
	// PortSpanningTree reports whether port participates in the
	// stepsRemoved/blocking rules reserved for TC-with-spanning-tree.
	PortSpanningTree(port uint16) bool
	PortDelayMechanism(port uint16) DelayMechanism
	// PortPaired returns the twin ring port for an HSR/PRP ring-side port.
	PortPaired(port uint16) (uint16, bool)
	PortIsRingSideA(port uint16) bool
	PortIsRingSideB(port uint16) bool
	// PortOneStep reports whether port's configured timestamping is
	// one-step (TS_ONESTEP or better) rather than two-step.
	PortOneStep(port uint16) bool
	PortRxTimestampOffset(port uint16) time.Duration
	PortTxTimestampOffset(port uint16) time.Duration
	PortPeerDelay(port uint16) time.Duration
	PortAsymmetry(port uint16) time.Duration
	PortIdentity(port uint16) ptp.PortIdentity

	ClockIdentity() ptp.ClockIdentity
	ParentIdentity() ptp.PortIdentity
	ClockType() ptp.ClockType
	IsHSR() bool
	IsPRP() bool
	DomainNumber() uint8

	// IncErrorCounter and Dispatch together implement §7's TransportError
	// policy: "increment the affected port's errorCounter and dispatch
	// FAULT_DETECTED to that port".
	IncErrorCounter(port uint16)
	Dispatch(port uint16, ev Event)
}
