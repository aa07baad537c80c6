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
	"fmt"

	log "github.com/sirupsen/logrus"

	ptp "github.com/westermo/gptp/ptp"
)

// PortState is the closed set of states a PTP port can be in (§3). It is a
// sum type in spirit: every switch over PortState in this package is
// exhaustive, so adding a state is a compile-time exercise, not a silent gap
// (§9 "tagged variants for state").
type PortState uint8

const (
	PortInitializing PortState = iota
	PortFaulty
	PortDisabled
	PortListening
	PortPreMaster
	PortMaster
	PortPassive
	PortUncalibrated
	PortSlave
	PortGrandMaster
	PortPassiveSlave
)

var portStateNames = [...]string{
	"INITIALIZING", "FAULTY", "DISABLED", "LISTENING", "PRE_MASTER",
	"MASTER", "PASSIVE", "UNCALIBRATED", "SLAVE", "GRAND_MASTER", "PASSIVE_SLAVE",
}

func (s PortState) String() string {
	if int(s) < len(portStateNames) {
		return portStateNames[s]
	}
	return fmt.Sprintf("PortState(%d)", uint8(s))
}

// Mode is the port's configured BMCA participation mode.
type Mode uint8

const (
	// ModeNormal runs the full state decision in §4.2.
	ModeNormal Mode = iota
	// ModeNoop holds the port's current state whenever it has no qualified
	// foreign master, instead of reconsidering it every time (§4.2 rule 1).
	ModeNoop
)

// ErrBmcaUnreachable names the case where the state decision falls through
// every rule (§7 BmcaUnreachable). No function in this package returns it:
// HSRStateDecision logs that case and returns PortFaulty.
var ErrBmcaUnreachable = fmt.Errorf("bmc: state decision fell through all cases")

// StateDecision implements the non-redundant per-port state decision
// (§4.2 bmc_state_decision / "M1"/"P1"/"M2"/"S1"/"P2"/"M3").
//
//   - cmp is the profile's comparator (Dscmp or TelecomDscmp).
//   - d0 is the clock's own default dataset.
//   - dbest is the clock-wide aggregate best foreign dataset.
//   - dr is this port's own best foreign dataset (nil if none qualified).
//   - current is the port's current state (consulted for the two
//     idempotence rules).
//   - mode is the port's configured BMCA mode.
//   - isBestPort reports whether this port is the one whose Dr == Dbest.
//   - clockClass is the clock's own advertised clockClass.
func StateDecision(cmp Compare, d0, dbest, dr *Dataset, current PortState, mode Mode, isBestPort bool, clockClass ptp.ClockClass) PortState {
	if dr == nil && mode == ModeNoop {
		return current
	}
	if dr == nil && current == PortListening {
		return current
	}

	if clockClass <= 127 {
		if cmp(d0, dr) > Equal {
			return PortGrandMaster // M1
		}
		return PortPassive // P1
	}

	if cmp(d0, dbest) > Equal {
		return PortGrandMaster // M2
	}
	if isBestPort {
		return PortSlave // S1
	}
	if cmp(dbest, dr) == ABetterTopo {
		return PortPassive // P2
	}
	return PortMaster // M3
}

// SelectBestPort picks the clock's best port: among all ports' Dr, the one
// the comparator ranks strictly best, breaking topology ties by port number
// (§4.2 "the clock's best port").
func SelectBestPort(byPort map[uint16]*Dataset, cmp Compare) (port uint16, ok bool) {
	first := true
	for p, ds := range byPort {
		if ds == nil {
			continue
		}
		if first {
			port, ok = p, true
			first = false
			continue
		}
		switch r := cmp(ds, byPort[port]); {
		case r == ABetter:
			port = p
		case r == ABetterTopo || r == BBetterTopo || r == Equal:
			// Topologically tied (or indistinguishable): break by port
			// number so the pick does not depend on map iteration order.
			if p < port {
				port = p
			}
		}
	}
	return port, ok
}

// HSRVariant selects which of the two source-derived hsr_state_decision
// bodies to run (§9 open question 1).
type HSRVariant uint8

const (
	// HSRVariantAuto picks HSRVariantNonTC for OC/BC clocks and
	// HSRVariantTCCollapsed for TC clocks — the default, and the behavior
	// an unconfigured caller gets.
	HSRVariantAuto HSRVariant = iota
	// HSRVariantNonTC is the documented variant: sticky PASSIVE_SLAVE /
	// SLAVE transitions, and a strict res1==ABetter && res2==ABetter test
	// before declaring an uncontested MASTER (§4.2, §9 open question 2).
	HSRVariantNonTC
	// HSRVariantTCCollapsed is the simplified variant the TC-guarded source
	// body uses: no stickiness, and any res1>Equal && res2>Equal declares
	// MASTER without distinguishing ABetter from ABetterTopo.
	HSRVariantTCCollapsed
)

func (v HSRVariant) resolve(isTC bool) HSRVariant {
	if v != HSRVariantAuto {
		return v
	}
	if isTC {
		return HSRVariantTCCollapsed
	}
	return HSRVariantNonTC
}

// HSRStateDecision implements the redundancy-aware state decision for a
// port r paired with port q under HSR or PRP (§4.2 hsr_state_decision).
//
//   - dbest is the clock-wide aggregate best foreign dataset.
//   - dr, dq are r's and q's own best foreign datasets.
//   - rCurrent, qCurrent are the current states of r and q.
//   - isTC reports whether the clock is a P2P/E2E transparent clock.
func HSRStateDecision(variant HSRVariant, cmp Compare, dbest, dr, dq *Dataset, rCurrent, qCurrent PortState, isTC bool) PortState {
	v := variant.resolve(isTC)

	// Rule 1: SLAVE pair election — either port sees the grandmaster the
	// clock already chose.
	if cmp(dr, dbest) == Equal || cmp(dq, dbest) == Equal {
		if cmp(dr, dq) > Equal {
			if v == HSRVariantNonTC && qCurrent == PortUncalibrated {
				// Sticky-passive: let q finish calibrating before r takes over.
				return PortPassiveSlave
			}
			return PortSlave
		}
		if v == HSRVariantNonTC && qCurrent == PortPassiveSlave && rCurrent != PortMaster {
			// Sticky-active: r stays SLAVE unless ANNOUNCE_RECEIPT_TIMEOUT
			// just bounced it through MASTER, which breaks stickiness.
			return PortSlave
		}
		return PortPassiveSlave
	}

	// Rule 2: both sides empty.
	if dr == nil && dq == nil {
		return PortMaster
	}

	// Rule 3: master-side.
	res1 := cmp(dbest, dr)
	res2 := cmp(dbest, dq)
	if res1 > Equal && res2 > Equal {
		switch v {
		case HSRVariantTCCollapsed:
			return PortMaster
		default: // HSRVariantNonTC
			if res1 == ABetter && res2 == ABetter {
				return PortMaster
			}
			if !isTC {
				return PortPassive
			}
		}
	}

	// Rule 4: residual TC-style standby, non-TC clocks only.
	if !isTC && cmp(dr, dq) != Equal {
		return PortPassive
	}

	// Rule 5: unreachable per spec; report and let the port re-initialize.
	log.WithFields(log.Fields{
		"res1": res1, "res2": res2, "variant": v,
	}).Error("hsr state decision fell through all cases")
	return PortFaulty
}
