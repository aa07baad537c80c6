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

import ptp "github.com/westermo/gptp/ptp"

// foreignMasterQualifyWindow / foreignMasterQualifyThreshold implement the
// "qualified after 2 of the last 4 expected Announces" rule of §3.
const (
	foreignMasterQualifyWindow    = 4
	foreignMasterQualifyThreshold = 2
)

// foreignMasterRecord tracks one sender PortIdentity's recent Announces.
type foreignMasterRecord struct {
	sender  ptp.PortIdentity
	recent  [foreignMasterQualifyWindow]bool // ring of hit/miss over the last window Announce intervals
	count   int                              // how many slots of recent are populated
	cursor  int
	latest  *Dataset
}

func (r *foreignMasterRecord) qualified() bool {
	if r.count < foreignMasterQualifyWindow {
		// not enough history yet; qualify optimistically once we've seen at
		// least the threshold worth of Announces, mirroring the "2 of 4"
		// rule applied to however much window has elapsed so far.
		hits := 0
		for i := 0; i < r.count; i++ {
			if r.recent[i] {
				hits++
			}
		}
		return hits >= foreignMasterQualifyThreshold && r.count >= foreignMasterQualifyThreshold
	}
	hits := 0
	for _, hit := range r.recent {
		if hit {
			hits++
		}
	}
	return hits >= foreignMasterQualifyThreshold
}

func (r *foreignMasterRecord) observe(a *ptp.Announce, receiver ptp.PortIdentity) {
	ds := FromAnnounce(a, receiver)
	r.latest = &ds
	r.recent[r.cursor] = true
	r.cursor = (r.cursor + 1) % foreignMasterQualifyWindow
	if r.count < foreignMasterQualifyWindow {
		r.count++
	}
}

// missed records an expected-but-absent Announce interval for every tracked
// sender; callers invoke this once per announce interval tick before
// observing whichever senders did show up.
func (r *foreignMasterRecord) missed() {
	r.recent[r.cursor] = false
	r.cursor = (r.cursor + 1) % foreignMasterQualifyWindow
	if r.count < foreignMasterQualifyWindow {
		r.count++
	}
}

// ForeignMasterSet is the per-port collection of recently heard Announce
// messages, grouped by sender PortIdentity (§3).
type ForeignMasterSet struct {
	records map[ptp.PortIdentity]*foreignMasterRecord
	compare Compare
}

// NewForeignMasterSet builds an empty set that will rank qualified records
// with cmp.
func NewForeignMasterSet(cmp Compare) *ForeignMasterSet {
	return &ForeignMasterSet{records: make(map[ptp.PortIdentity]*foreignMasterRecord), compare: cmp}
}

// Tick marks one Announce interval elapsing without a message for every
// tracked sender; call once per announceReceiptTimeout/announceInterval
// before Observe-ing whatever did arrive in that interval.
func (s *ForeignMasterSet) Tick() {
	for _, r := range s.records {
		r.missed()
	}
}

// Observe records a newly received Announce.
func (s *ForeignMasterSet) Observe(a *ptp.Announce, receiver ptp.PortIdentity) {
	sender := a.Header.SourcePortIdentity
	r, ok := s.records[sender]
	if !ok {
		r = &foreignMasterRecord{sender: sender}
		s.records[sender] = r
	}
	r.observe(a, receiver)
}

// Clear drops all foreign master state, as happens on
// ANNOUNCE_RECEIPT_TIMEOUT (§5).
func (s *ForeignMasterSet) Clear() {
	s.records = make(map[ptp.PortIdentity]*foreignMasterRecord)
}

// Best returns the qualified record with the best Dataset, or nil if none of
// the tracked senders are qualified yet.
func (s *ForeignMasterSet) Best() *Dataset {
	var best *Dataset
	for _, r := range s.records {
		if !r.qualified() || r.latest == nil {
			continue
		}
		if best == nil || s.compare(r.latest, best) == ABetter || s.compare(r.latest, best) == ABetterTopo {
			best = r.latest
		}
	}
	return best
}
