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

// fakePort models one port's configuration for fakeClock.
type fakePort struct {
	state       bmc.PortState
	spanTree    bool
	delay       DelayMechanism
	paired      uint16
	hasPair     bool
	ringA       bool
	ringB       bool
	oneStep     bool
	rxOffset    time.Duration
	txOffset    time.Duration
	peerDelay   time.Duration
	asymmetry   time.Duration
	identity    ptp.PortIdentity
}

// fakeClock is a minimal, table-driven Clock for tc package tests.
type fakeClock struct {
	ports     []uint16
	byPort    map[uint16]*fakePort
	identity  ptp.ClockIdentity
	parent    ptp.PortIdentity
	clockType ptp.ClockType
	hsr       bool
	prp       bool
	domain    uint8

	faults map[uint16]int
	events []struct {
		port uint16
		ev   Event
	}
}

func newFakeClock(domain uint8) *fakeClock {
	return &fakeClock{
		byPort: make(map[uint16]*fakePort),
		domain: domain,
		faults: make(map[uint16]int),
	}
}

func (c *fakeClock) addPort(p uint16, cfg fakePort) {
	c.ports = append(c.ports, p)
	cp := cfg
	if cp.identity == (ptp.PortIdentity{}) {
		cp.identity = ptp.PortIdentity{ClockIdentity: c.identity, PortNumber: p}
	}
	c.byPort[p] = &cp
}

func (c *fakeClock) Ports() []uint16 { return c.ports }
func (c *fakeClock) PortState(p uint16) bmc.PortState {
	return c.byPort[p].state
}
func (c *fakeClock) PortSpanningTree(p uint16) bool { return c.byPort[p].spanTree }
func (c *fakeClock) PortDelayMechanism(p uint16) DelayMechanism {
	return c.byPort[p].delay
}
func (c *fakeClock) PortPaired(p uint16) (uint16, bool) {
	fp := c.byPort[p]
	return fp.paired, fp.hasPair
}
func (c *fakeClock) PortIsRingSideA(p uint16) bool { return c.byPort[p].ringA }
func (c *fakeClock) PortIsRingSideB(p uint16) bool { return c.byPort[p].ringB }
func (c *fakeClock) PortOneStep(p uint16) bool     { return c.byPort[p].oneStep }
func (c *fakeClock) PortRxTimestampOffset(p uint16) time.Duration {
	return c.byPort[p].rxOffset
}
func (c *fakeClock) PortTxTimestampOffset(p uint16) time.Duration {
	return c.byPort[p].txOffset
}
func (c *fakeClock) PortPeerDelay(p uint16) time.Duration { return c.byPort[p].peerDelay }
func (c *fakeClock) PortAsymmetry(p uint16) time.Duration { return c.byPort[p].asymmetry }
func (c *fakeClock) PortIdentity(p uint16) ptp.PortIdentity {
	return c.byPort[p].identity
}

func (c *fakeClock) ClockIdentity() ptp.ClockIdentity    { return c.identity }
func (c *fakeClock) ParentIdentity() ptp.PortIdentity     { return c.parent }
func (c *fakeClock) ClockType() ptp.ClockType             { return c.clockType }
func (c *fakeClock) IsHSR() bool                          { return c.hsr }
func (c *fakeClock) IsPRP() bool                          { return c.prp }
func (c *fakeClock) DomainNumber() uint8                  { return c.domain }

func (c *fakeClock) IncErrorCounter(port uint16) { c.faults[port]++ }
func (c *fakeClock) Dispatch(port uint16, ev Event) {
	c.events = append(c.events, struct {
		port uint16
		ev   Event
	}{port, ev})
}

// fakeTransport records every Send and serves canned tx timestamps.
type fakeTransport struct {
	sent     []sentMsg
	txTimes  map[uint16]time.Time
	sendErr  map[uint16]error
	recvErr  map[uint16]error
}

type sentMsg struct {
	port uint16
	kind SendKind
	msg  ptp.Message
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		txTimes: make(map[uint16]time.Time),
		sendErr: make(map[uint16]error),
		recvErr: make(map[uint16]error),
	}
}

func (t *fakeTransport) Send(port uint16, kind SendKind, msg ptp.Message) (int, error) {
	if err := t.sendErr[port]; err != nil {
		return 0, err
	}
	t.sent = append(t.sent, sentMsg{port, kind, cloneMessage(msg)})
	return 1, nil
}

func (t *fakeTransport) RecvTxTimestamp(port uint16, msg ptp.Message) (time.Time, error) {
	if err := t.recvErr[port]; err != nil {
		return time.Time{}, err
	}
	return t.txTimes[port], nil
}

// cloneMessage snapshots a message's exported state so later mutation-and-
// restore in the forwarder does not retroactively change what a test
// observed as "sent".
func cloneMessage(msg ptp.Message) ptp.Message {
	switch m := msg.(type) {
	case *ptp.Sync:
		cp := *m
		return &cp
	case *ptp.FollowUp:
		cp := *m
		return &cp
	case *ptp.DelayResp:
		cp := *m
		return &cp
	case *ptp.Announce:
		cp := *m
		return &cp
	default:
		return msg
	}
}

// fakeTimer provides a deterministic, caller-controlled clock.
type fakeTimer struct {
	now   time.Time
	ratio float64
}

func newFakeTimer(now time.Time) *fakeTimer {
	return &fakeTimer{now: now, ratio: 1.0}
}

func (t *fakeTimer) MonotonicNow() time.Time { return t.now }
func (t *fakeTimer) RateRatio() float64      { return t.ratio }
