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

// Package bmc implements the Best Master Clock Algorithm: the Dataset
// comparator (IEEE 1588 §9.3.4 plus the IEC 62439-3 HSR/PRP redundancy
// annexes) and the per-port state decision built on top of it.
package bmc

import ptp "github.com/westermo/gptp/ptp"

// Dataset is the comparable unit the BMCA reasons about: the identity and
// quality of a grandmaster as advertised by one Announce message, plus the
// topology breadcrumbs (sender/receiver) needed to break ties. A Dataset is
// immutable once built from an Announce (§3).
type Dataset struct {
	Priority1     uint8
	Priority2     uint8
	LocalPriority uint8 // telecom profile only
	Identity      ptp.ClockIdentity
	Quality       ptp.ClockQuality
	StepsRemoved  uint16
	Sender        ptp.PortIdentity
	Receiver      ptp.PortIdentity
}

// FromAnnounce builds the Dataset a BMCA Announce yields, as recorded by the
// port (receiver) that took it off the wire.
func FromAnnounce(a *ptp.Announce, receiver ptp.PortIdentity) Dataset {
	return Dataset{
		Priority1:    a.GrandmasterPriority1,
		Priority2:    a.GrandmasterPriority2,
		Identity:     a.GrandmasterIdentity,
		Quality:      a.GrandmasterClockQuality,
		StepsRemoved: a.StepsRemoved,
		Sender:       a.Header.SourcePortIdentity,
		Receiver:     receiver,
	}
}
