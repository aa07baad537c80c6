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

	ptp "github.com/westermo/gptp/ptp"
)

// Correlator tracks in-flight TxDs on a per-port basis and matches them
// against the complementary half of a Sync/FollowUp pair or a
// DelayReq/DelayResp pair (§4.4 "Correlator"). One table per egress port is
// kept, exactly as the C source's single tc_transmitted list per port is
// walked for both directions.
type Correlator struct {
	pool    *pool
	pending map[uint16][]*TxD
}

// NewCorrelator builds an empty Correlator. maxOutstanding bounds the total
// number of live TxDs across all ports (0 means unbounded); see pool.
func NewCorrelator(maxOutstanding int) *Correlator {
	return &Correlator{
		pool:    newPool(maxOutstanding),
		pending: make(map[uint16][]*TxD),
	}
}

// Stash records msg, sent out egress on behalf of ingress, as awaiting its
// correlation counterpart.
func (c *Correlator) Stash(egress uint16, msg ptp.Message, ingress uint16, residence time.Duration, now time.Time) error {
	txd := c.pool.get()
	if txd == nil {
		return ErrAllocFailure
	}
	txd.msg = NewRef(msg).Get()
	txd.ingress = ingress
	txd.residence = residence
	txd.created = now
	c.pending[egress] = append(c.pending[egress], txd)
	return nil
}

type matchKind uint8

const (
	matchMismatch matchKind = iota
	matchSyncFollowUp
	matchFollowUpSync
)

// matchSyFupTxd reports how (if at all) m, arriving on ingress, correlates
// with a TxD previously stashed by the Sync/FollowUp path (tc_match_syfup).
func matchSyFupTxd(ingress uint16, m ptp.Message, txd *TxD) matchKind {
	if txd.ingress != ingress {
		return matchMismatch
	}
	pending := txd.msg.Msg()
	if pending.SeqID() != m.SeqID() || pending.Source() != m.Source() {
		return matchMismatch
	}
	switch {
	case pending.Type() == ptp.MessageSync && m.Type() == ptp.MessageFollowUp:
		return matchSyncFollowUp
	case pending.Type() == ptp.MessageFollowUp && m.Type() == ptp.MessageSync:
		return matchFollowUpSync
	default:
		return matchMismatch
	}
}

// CompleteSyncFollowUp looks for m's complementary half among the TxDs
// previously stashed on egress by ingress. On a match it removes and
// releases the stashed TxD and returns the FollowUp half of the pair (the
// one carrying preciseOriginTimestamp) plus the Sync half's residence time:
// the stashed entry's when the Sync arrived first, the residence argument
// when m is the Sync. On a miss, m itself is stashed so its own
// complementary half can find it later, and matched is false.
func (c *Correlator) CompleteSyncFollowUp(egress, ingress uint16, m ptp.Message, residence time.Duration, now time.Time) (ptp.Message, time.Duration, bool, error) {
	list := c.pending[egress]
	for i, txd := range list {
		kind := matchSyFupTxd(ingress, m, txd)
		if kind == matchMismatch {
			continue
		}
		pending := txd.msg.Msg()
		c.removeAt(egress, i, txd)

		var fup ptp.Message
		var r time.Duration
		switch kind {
		case matchSyncFollowUp:
			fup, r = m, txd.residence
		case matchFollowUpSync:
			fup, r = pending, residence
		}
		return fup, r, true, nil
	}
	if err := c.Stash(egress, m, ingress, residence, now); err != nil {
		return nil, 0, false, err
	}
	return nil, 0, false, nil
}

// MatchDelay looks for a DelayReq TxD, previously stashed on arrivalPort by
// candidateEgress, that resp correlates with (tc_match_delay). On a match it
// removes and releases the TxD and returns its recorded residence time.
func (c *Correlator) MatchDelay(arrivalPort, candidateEgress uint16, resp *ptp.DelayResp) (time.Duration, bool) {
	list := c.pending[arrivalPort]
	for i, txd := range list {
		if txd.ingress != candidateEgress {
			continue
		}
		req := txd.msg.Msg()
		if req.Type() != ptp.MessageDelayReq {
			continue
		}
		if req.SeqID() != resp.SeqID() || req.Source() != resp.RequestingPortIdentity {
			continue
		}
		residence := txd.residence
		c.removeAt(arrivalPort, i, txd)
		return residence, true
	}
	return 0, false
}

func (c *Correlator) removeAt(port uint16, i int, txd *TxD) {
	list := c.pending[port]
	list[i] = list[len(list)-1]
	list[len(list)-1] = nil
	c.pending[port] = list[:len(list)-1]
	txd.msg.Put()
	c.pool.put(txd)
}

// Prune drops every TxD older than the staleness window as of now, releasing
// its message reference, and reports how many were dropped (tc_prune).
func (c *Correlator) Prune(now time.Time) int {
	dropped := 0
	for port, list := range c.pending {
		kept := list[:0]
		for _, txd := range list {
			if txd.stale(now) {
				txd.msg.Put()
				c.pool.put(txd)
				dropped++
				continue
			}
			kept = append(kept, txd)
		}
		c.pending[port] = kept
	}
	return dropped
}

// Flush unconditionally drops every pending TxD on port, releasing its
// message reference (tc_flush), e.g. when the port reinitializes.
func (c *Correlator) Flush(port uint16) {
	for _, txd := range c.pending[port] {
		txd.msg.Put()
		c.pool.put(txd)
	}
	delete(c.pending, port)
}

// Close flushes every port's pending TxDs (tc_cleanup).
func (c *Correlator) Close() {
	for port := range c.pending {
		c.Flush(port)
	}
}
