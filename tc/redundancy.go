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
	"github.com/westermo/gptp/bmc"
	ptp "github.com/westermo/gptp/ptp"
)

// ShouldUsePort implements the HSR/PRP duplicate-suppression predicate
// (§4.6 "Duplicate suppression on egress" / tc_hsr_prp_should_use_port).
func ShouldUsePort(c Clock, p uint16) bool {
	if c.PortIsRingSideA(p) {
		return true
	}
	if c.PortIsRingSideB(p) {
		pair, ok := c.PortPaired(p)
		if !ok {
			return true
		}
		switch c.PortState(pair) {
		case bmc.PortDisabled, bmc.PortFaulty, bmc.PortPassiveSlave, bmc.PortListening:
			// Either A is genuinely down, or (PASSIVE_SLAVE/LISTENING) we
			// send on B anyway to preserve tc_ignore rules upstream and cut
			// switchover delay.
			return true
		default:
			return false
		}
	}
	return true // interlink
}

func hsrShouldForward(c Clock, ingress, egress uint16, msg ptp.Message) bool {
	_, ingressPaired := c.PortPaired(ingress)
	_, egressPaired := c.PortPaired(egress)

	if !ingressPaired && egressPaired {
		return ShouldUsePort(c, egress)
	}
	if ingressPaired && !egressPaired {
		// Out of the ring: only forward frames that trace back to our own
		// parent, so a rogue frame from another ring node does not leak
		// onto the interlink (§4.6 "Ring -> interlink").
		return msg.Source() == c.ParentIdentity()
	}
	// Ring <-> ring forwarding never reaches software: hardware prevents it
	// and software never re-emits on the paired port.
	return true
}

func prpShouldForward(c Clock, ingress, egress uint16, msg ptp.Message) bool {
	_, ingressPaired := c.PortPaired(ingress)
	_, egressPaired := c.PortPaired(egress)

	if !ingressPaired && egressPaired {
		if resp, ok := msg.(*ptp.DelayResp); ok {
			// DelayResp forwarding is asymmetric: route strictly by which
			// LAN the original request carried, independent of
			// ShouldUsePort (§4.6 "PRP portNumber LAN-tag bits").
			bits := resp.RequestingPortIdentity.LANBits()
			switch {
			case c.PortIsRingSideA(egress):
				return bits == ptp.LANBitsRingA
			case c.PortIsRingSideB(egress):
				return bits == ptp.LANBitsRingB
			default:
				return false
			}
		}
		return ShouldUsePort(c, egress)
	}
	return true
}

// RingSourceIdentity returns the PortIdentity to substitute as msg's source
// when HSR-injecting a frame from an interlink port into the ring, so the
// ring sees a single TC identity regardless of which physical ring port
// actually carries it (§4.6 "Source-identity rewrite for HSR ring
// injection"). ok is false when no rewrite applies to this (ingress,
// egress) pair.
func RingSourceIdentity(c Clock, ingress, egress uint16) (id ptp.PortIdentity, ok bool) {
	_, ingressPaired := c.PortPaired(ingress)
	_, egressPaired := c.PortPaired(egress)
	if ingressPaired || !egressPaired {
		return ptp.PortIdentity{}, false
	}
	master := egress
	if c.PortIsRingSideB(egress) {
		if pair, pok := c.PortPaired(egress); pok {
			master = pair
		}
	}
	return c.PortIdentity(master), true
}

// PRPSourceLANBits returns the portNumber LAN tag (§4.6, §6 "PRP portNumber
// LAN-tag bits") to stamp into msg's sourcePortIdentity when forwarding from
// ingress to egress over an E2E-delay port, and whether it applies at all.
func PRPSourceLANBits(c Clock, ingress, egress uint16) (bits uint16, apply bool) {
	if c.PortDelayMechanism(ingress) != DelayE2E {
		return 0, false
	}
	switch {
	case c.PortIsRingSideA(egress):
		return ptp.LANBitsRingA, true
	case c.PortIsRingSideB(egress):
		return ptp.LANBitsRingB, true
	case c.PortIsRingSideA(ingress) || c.PortIsRingSideB(ingress):
		return ptp.LANBitsNone, true
	}
	return 0, false
}

// PRPClearDelayRespLANBits clears the LAN tag carried in a DelayResp's
// requestingPortIdentity field once the response has been routed to the
// matching ring side, so the tag never leaks past this hop (§4.6).
func PRPClearDelayRespLANBits(c Clock, ingress uint16, resp *ptp.DelayResp) {
	if c.PortDelayMechanism(ingress) != DelayE2E {
		return
	}
	resp.RequestingPortIdentity = resp.RequestingPortIdentity.WithLANBits(ptp.LANBitsNone)
}

// ShouldForward is the top-level HSR/PRP overlay gate (§4.6): on a
// non-redundant clock every message that survives the block filter may be
// forwarded; HSR and PRP clocks each add their own suppression rule on top.
func ShouldForward(c Clock, ingress, egress uint16, msg ptp.Message) bool {
	switch {
	case c.IsHSR():
		return hsrShouldForward(c, ingress, egress, msg)
	case c.IsPRP():
		return prpShouldForward(c, ingress, egress, msg)
	default:
		return true
	}
}
