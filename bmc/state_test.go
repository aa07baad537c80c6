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

import (
	"testing"

	"github.com/stretchr/testify/require"

	ptp "github.com/westermo/gptp/ptp"
)

// Scenario 1 (§8): simple OC slave selection.
func TestStateDecisionSlaveSelection(t *testing.T) {
	d0 := &Dataset{Priority1: 128, Quality: ptp.ClockQuality{ClockClass: 248}}
	dr := &Dataset{Priority1: 128, Quality: ptp.ClockQuality{ClockClass: 6}, StepsRemoved: 1}

	got := StateDecision(Dscmp, d0, dr, dr, PortUncalibrated, ModeNormal, true, 248)
	require.Equal(t, PortSlave, got)
}

// Scenario 2 (§8): self-elected grandmaster.
func TestStateDecisionSelfElectedGrandmaster(t *testing.T) {
	d0 := &Dataset{Priority1: 128, Quality: ptp.ClockQuality{ClockClass: 6}}
	got := StateDecision(Dscmp, d0, nil, nil, PortMaster, ModeNormal, false, 6)
	require.Equal(t, PortGrandMaster, got)
}

func TestStateDecisionNoopHoldsCurrent(t *testing.T) {
	got := StateDecision(Dscmp, &Dataset{}, nil, nil, PortPassive, ModeNoop, false, 248)
	require.Equal(t, PortPassive, got)
}

func TestStateDecisionListeningIdempotent(t *testing.T) {
	got := StateDecision(Dscmp, &Dataset{}, nil, nil, PortListening, ModeNormal, false, 248)
	require.Equal(t, PortListening, got)
}

func TestStateDecisionPassiveWhenNotBestPortTopoWorse(t *testing.T) {
	d0 := &Dataset{Priority1: 128, Quality: ptp.ClockQuality{ClockClass: 248}}
	dbest := &Dataset{Priority1: 1, Quality: ptp.ClockQuality{ClockClass: 6}, StepsRemoved: 1}
	// dr on this port sees the same grandmaster one hop farther away than
	// the clock-wide best, so cmp(dbest, dr) == ABetterTopo: not the
	// clock's best port, and not simply "worse" either.
	dr := &Dataset{
		Priority1: 1, Quality: ptp.ClockQuality{ClockClass: 6}, StepsRemoved: 2,
		Sender:   ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1},
		Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 1},
	}
	got := StateDecision(Dscmp, d0, dbest, dr, PortMaster, ModeNormal, false, 248)
	require.Equal(t, PortPassive, got)
}

func TestSelectBestPort(t *testing.T) {
	byPort := map[uint16]*Dataset{
		1: {Identity: 10, Priority1: 10},
		2: {Identity: 20, Priority1: 5},
		3: {Identity: 30, Priority1: 5},
	}
	port, ok := SelectBestPort(byPort, Dscmp)
	require.True(t, ok)
	require.Equal(t, uint16(2), port) // 2 and 3 tie on quality; lower identity wins the final tiebreak
}

// A topological tie (same grandmaster, same stepsRemoved, equal sender) must
// resolve to the lower port number regardless of Go's randomized map
// iteration order — the tie-break cannot depend on which port the loop
// happens to visit first.
func TestSelectBestPortTopologicalTieIsOrderIndependent(t *testing.T) {
	gm := ptp.ClockIdentity(0xaabbccddeeff0011)
	sender := ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1}
	byPort := map[uint16]*Dataset{
		5: {Identity: gm, StepsRemoved: 2, Sender: sender, Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 5}},
		2: {Identity: gm, StepsRemoved: 2, Sender: sender, Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 2}},
	}
	for i := 0; i < 20; i++ {
		port, ok := SelectBestPort(byPort, Dscmp)
		require.True(t, ok)
		require.Equal(t, uint16(2), port, "lower port number must win the topological tie on every iteration order")
	}
}

// Scenario 3 (§8): HSR dual-attached slave selection by sender identity.
// dbest is the record the clock already settled on for the grandmaster,
// which here is port r's own observation (same sender/receiver pair) — the
// ordinary case once Dbest has converged on one of the two ring ports.
func TestHSRStateDecisionDualAttachedSlave(t *testing.T) {
	gm := ptp.ClockIdentity(0xaabbccddeeff0011)
	rSender := ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1}
	rReceiver := ptp.PortIdentity{ClockIdentity: 9, PortNumber: 1}
	dbest := &Dataset{Identity: gm, StepsRemoved: 2, Sender: rSender, Receiver: rReceiver}
	dr := &Dataset{Identity: gm, StepsRemoved: 2, Sender: rSender, Receiver: rReceiver}
	dq := &Dataset{
		Identity: gm, StepsRemoved: 2,
		Sender:   ptp.PortIdentity{ClockIdentity: 2, PortNumber: 1},
		Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 2},
	}

	got := HSRStateDecision(HSRVariantNonTC, Dscmp, dbest, dr, dq, PortListening, PortListening, false)
	require.Equal(t, PortSlave, got, "smaller sender identity should win the active side")

	gotOther := HSRStateDecision(HSRVariantNonTC, Dscmp, dbest, dq, dr, PortListening, PortListening, false)
	require.Equal(t, PortPassiveSlave, gotOther)
}

// Scenario 4 (§8): sticky PASSIVE_SLAVE.
func TestHSRStateDecisionSticky(t *testing.T) {
	gm := ptp.ClockIdentity(0xaabbccddeeff0011)
	sender := ptp.PortIdentity{ClockIdentity: 5, PortNumber: 1}
	receiver := ptp.PortIdentity{ClockIdentity: 9, PortNumber: 1}
	dbest := &Dataset{Identity: gm, StepsRemoved: 2, Sender: sender, Receiver: receiver}
	// Equal topology: same sender/receiver pair on both sides once reduced,
	// so cmp(dr, dq) == Equal (tie — "not strictly better").
	dr := &Dataset{Identity: gm, StepsRemoved: 2, Sender: sender, Receiver: receiver}
	dq := &Dataset{Identity: gm, StepsRemoved: 2, Sender: sender, Receiver: receiver}

	// r currently SLAVE, q currently PASSIVE_SLAVE: sticky-active keeps r SLAVE.
	got := HSRStateDecision(HSRVariantNonTC, Dscmp, dbest, dr, dq, PortSlave, PortPassiveSlave, false)
	require.Equal(t, PortSlave, got)
}

func TestHSRStateDecisionBothEmptyElectsMaster(t *testing.T) {
	dbest := &Dataset{Identity: 1}
	got := HSRStateDecision(HSRVariantNonTC, Dscmp, dbest, nil, nil, PortInitializing, PortInitializing, false)
	require.Equal(t, PortMaster, got)
}

func TestHSRStateDecisionRedundantMasterStandby(t *testing.T) {
	dbest := &Dataset{Identity: 1, Priority1: 1}
	drTopo := &Dataset{
		Identity: 1, Priority1: 1, StepsRemoved: 1,
		Sender:   ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1},
		Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 2},
	}
	dqTopo := &Dataset{
		Identity: 1, Priority1: 1, StepsRemoved: 1,
		Sender:   ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1},
		Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 3},
	}
	got := HSRStateDecision(HSRVariantNonTC, Dscmp, dbest, drTopo, dqTopo, PortMaster, PortPassive, false)
	require.Equal(t, PortPassive, got)
}

func TestHSRVariantTCCollapsed(t *testing.T) {
	dbest := &Dataset{Identity: 1, Priority1: 1}
	drTopo := &Dataset{
		Identity: 1, Priority1: 1, StepsRemoved: 1,
		Sender:   ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1},
		Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 2},
	}
	dqTopo := &Dataset{
		Identity: 1, Priority1: 1, StepsRemoved: 1,
		Sender:   ptp.PortIdentity{ClockIdentity: 1, PortNumber: 1},
		Receiver: ptp.PortIdentity{ClockIdentity: 9, PortNumber: 3},
	}
	// Under the collapsed TC variant both paths being merely topo-better is
	// enough to declare MASTER, unlike the non-TC variant above.
	got := HSRStateDecision(HSRVariantTCCollapsed, Dscmp, dbest, drTopo, dqTopo, PortMaster, PortPassive, true)
	require.Equal(t, PortMaster, got)
}
