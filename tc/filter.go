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

// Blocked implements the TC Block Filter (§4.3): whether m must not cross
// from ingress port q to egress port p.
func Blocked(c Clock, ingress, egress uint16, m ptp.Message) bool {
	if ingress == egress {
		return true
	}
	if egress == 0 {
		return true
	}
	if !c.PortSpanningTree(ingress) && !c.IsHSR() {
		return false
	}
	if m.Domain() != c.DomainNumber() {
		return false
	}

	reverse := m.Type() == ptp.MessageDelayReq || m.Type() == ptp.MessageManagement

	// The UDS/management pseudo-port is "forwarding" whenever it is not
	// FAULTY, so local management replies can always leave it (§4.3
	// "Special case").
	skipIngress := ingress == 0 && c.PortState(ingress) != bmc.PortFaulty
	if !skipIngress && ingressBlocked(c.PortState(ingress), reverse) {
		return true
	}
	return egressBlocked(c.PortState(egress), m.Type())
}

func ingressBlocked(state bmc.PortState, reverse bool) bool {
	switch state {
	case bmc.PortInitializing, bmc.PortFaulty, bmc.PortDisabled, bmc.PortListening,
		bmc.PortPreMaster, bmc.PortPassive, bmc.PortPassiveSlave:
		return true
	case bmc.PortMaster, bmc.PortGrandMaster:
		// Delay_Req and Management swim against the stream.
		return !reverse
	case bmc.PortUncalibrated, bmc.PortSlave:
		return false
	default:
		return true
	}
}

func egressBlocked(state bmc.PortState, msgType ptp.MessageType) bool {
	switch state {
	case bmc.PortInitializing, bmc.PortFaulty, bmc.PortDisabled, bmc.PortListening,
		bmc.PortPreMaster, bmc.PortPassive, bmc.PortPassiveSlave:
		return true
	case bmc.PortUncalibrated, bmc.PortSlave:
		return !(msgType == ptp.MessageDelayReq || msgType == ptp.MessageManagement)
	case bmc.PortMaster, bmc.PortGrandMaster:
		// No use forwarding Delay_Req out the wrong port.
		return msgType == ptp.MessageDelayReq
	default:
		return true
	}
}
