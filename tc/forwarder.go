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

	log "github.com/sirupsen/logrus"

	ptp "github.com/westermo/gptp/ptp"
)

// Forwarder is the TC forwarding engine (§4 "Transparent Clock"): it applies
// the block filter, residence-time correction, one-step/two-step fusion and
// the HSR/PRP overlay to every message received on one port before it leaves
// on the others.
type Forwarder struct {
	transport Transport
	clock     Clock
	timer     Timer
	corr      *Correlator
	onestep   map[uint16]*onestepHalf
}

// NewForwarder builds a Forwarder driven by the given collaborators (§6).
func NewForwarder(transport Transport, clock Clock, timer Timer, corr *Correlator) *Forwarder {
	return &Forwarder{
		transport: transport,
		clock:     clock,
		timer:     timer,
		corr:      corr,
		onestep:   make(map[uint16]*onestepHalf),
	}
}

// Forward routes msg, received on ingress at ingressTS, to every eligible
// egress port.
func (f *Forwarder) Forward(ingress uint16, ingressTS time.Time, msg ptp.Message) error {
	switch m := msg.(type) {
	case *ptp.Announce:
		return f.forwardAnnounce(ingress, m)
	case *ptp.Sync:
		if m.Header.MessageType == ptp.MessageDelayReq {
			return f.forwardEvent(ingress, ingressTS, m)
		}
		return f.forwardSync(ingress, ingressTS, m)
	case *ptp.FollowUp:
		return f.forwardFollowUp(ingress, m)
	case *ptp.DelayResp:
		return f.forwardDelayResp(ingress, m)
	default:
		return f.forwardGeneric(ingress, msg)
	}
}

func (f *Forwarder) forwardAnnounce(ingress uint16, a *ptp.Announce) error {
	if f.clock.PortSpanningTree(ingress) {
		a.StepsRemoved++
	}
	return f.forwardGeneric(ingress, a)
}

// forwardSync implements the §4.5 one-step/two-step dispatch for a genuine
// Sync message.
func (f *Forwarder) forwardSync(ingress uint16, ingressTS time.Time, s *ptp.Sync) error {
	ingressOneStep := f.clock.PortOneStep(ingress)
	incomingTwoStep := s.Header.TwoStep()

	if ingressOneStep && !incomingTwoStep {
		return f.forwardEvent(ingress, ingressTS, s)
	}
	if ingressOneStep && incomingTwoStep {
		return f.fuseOneStep(ingress, ingressTS, onestepPart{
			isSync:    true,
			seq:       s.SeqID(),
			source:    s.Source(),
			origin:    s.OriginTimestamp,
			corr:      s.Correction(),
			reserved2: s.Header.Reserved2,
		})
	}
	if !ingressOneStep && !incomingTwoStep {
		// Two-step egress, one-step ingress: synthesize a matching FollowUp
		// from the Sync's own origin timestamp and correction, then forward
		// both (§4.5 "Two-step egress with a one-step ingress").
		s.Header.FlagField |= ptp.FlagTwoStep
		if err := f.forwardEvent(ingress, ingressTS, s); err != nil {
			return err
		}
		fup := &ptp.FollowUp{
			Header:                 s.Header,
			PreciseOriginTimestamp: s.OriginTimestamp,
		}
		fup.Header.MessageType = ptp.MessageFollowUp
		return f.forwardFollowUp(ingress, fup)
	}
	// Two-step ingress, two-step incoming: forward the Sync now, the
	// FollowUp will arrive and be forwarded separately.
	return f.forwardEvent(ingress, ingressTS, s)
}

func (f *Forwarder) forwardFollowUp(ingress uint16, fup *ptp.FollowUp) error {
	if f.clock.PortOneStep(ingress) {
		return f.fuseOneStep(ingress, f.timer.MonotonicNow(), onestepPart{
			isSync:    false,
			seq:       fup.SeqID(),
			source:    fup.Source(),
			origin:    fup.PreciseOriginTimestamp,
			corr:      fup.Correction(),
			reserved2: fup.Header.Reserved2,
		})
	}
	for _, egress := range f.clock.Ports() {
		if Blocked(f.clock, ingress, egress, fup) {
			continue
		}
		if !ShouldForward(f.clock, ingress, egress, fup) {
			continue
		}
		if err := f.completeSyncFollowUp(ingress, egress, fup, 0); err != nil {
			log.WithError(err).Warnf("tc: completing follow-up on port %d", egress)
		}
	}
	return nil
}

func (f *Forwarder) forwardDelayResp(ingress uint16, resp *ptp.DelayResp) error {
	for _, egress := range f.clock.Ports() {
		if Blocked(f.clock, ingress, egress, resp) {
			continue
		}
		if !ShouldForward(f.clock, ingress, egress, resp) {
			continue
		}

		if f.clock.PortOneStep(egress) {
			f.applyLANTagging(ingress, egress, resp)
			PRPClearDelayRespLANBits(f.clock, ingress, resp)
			if _, err := f.transport.Send(egress, SendGeneral, resp); err != nil {
				f.fault(egress, err)
			}
			continue
		}

		residence, matched := f.corr.MatchDelay(ingress, egress, resp)
		if !matched {
			continue
		}
		orig := resp.Correction()
		resp.SetCorrection(orig.Add(residence))
		PRPClearDelayRespLANBits(f.clock, ingress, resp)
		_, err := f.transport.Send(egress, SendGeneral, resp)
		resp.SetCorrection(orig)
		if err != nil {
			f.fault(egress, err)
		}
	}
	return nil
}

func (f *Forwarder) forwardGeneric(ingress uint16, msg ptp.Message) error {
	isManagement := msg.Type() == ptp.MessageManagement
	for _, egress := range f.clock.Ports() {
		if Blocked(f.clock, ingress, egress, msg) {
			continue
		}
		if isManagement && (f.clock.IsHSR() || f.clock.IsPRP()) {
			_, ingressPaired := f.clock.PortPaired(ingress)
			_, egressPaired := f.clock.PortPaired(egress)
			if ingressPaired || egressPaired {
				// Ring-internal management traffic is not forwarded in
				// software: the ring hardware already floods it.
				continue
			}
			// Interlink-to-interlink management is forwarded unmodified,
			// preserving the original source identity.
			if _, err := f.transport.Send(egress, SendGeneral, msg); err != nil {
				f.fault(egress, err)
			}
			continue
		}
		orig := msg.Source()
		f.applyIdentity(ingress, egress, msg)
		_, err := f.transport.Send(egress, SendGeneral, msg)
		msg.SetSource(orig)
		if err != nil {
			f.fault(egress, err)
		}
	}
	return nil
}

// forwardEvent is the core Sync/DelayReq egress loop (§4.5 "Residence-time
// correction"): apply the baseline correction once, send to every eligible
// egress restoring the correction field between sends, then — unless ingress
// is one-step — gather transmit timestamps and hand each egress off for
// correlation.
func (f *Forwarder) forwardEvent(ingress uint16, ingressTS time.Time, msg ptp.Message) error {
	orig := msg.Correction()
	if msg.Type() == ptp.MessageSync {
		baseline := orig.
			Add(f.clock.PortPeerDelay(ingress)).
			Add(f.clock.PortAsymmetry(ingress)).
			Add(f.clock.PortRxTimestampOffset(ingress))
		msg.SetCorrection(baseline)
	}
	baseline := msg.Correction()

	ingressOneStep := f.clock.PortOneStep(ingress)
	sent := make([]uint16, 0, len(f.clock.Ports()))

	for _, egress := range f.clock.Ports() {
		if Blocked(f.clock, ingress, egress, msg) {
			continue
		}
		if !ShouldForward(f.clock, ingress, egress, msg) {
			continue
		}
		msg.SetCorrection(baseline.Add(f.clock.PortTxTimestampOffset(egress)))
		origSource := msg.Source()
		f.applyIdentity(ingress, egress, msg)

		kind := SendGeneral
		if msg.Type().IsEvent() {
			kind = SendDeferEvent
		}
		_, err := f.transport.Send(egress, kind, msg)
		msg.SetSource(origSource)
		msg.SetCorrection(baseline)
		if err != nil {
			f.fault(egress, err)
			continue
		}
		sent = append(sent, egress)
	}
	msg.SetCorrection(orig)

	if ingressOneStep {
		return nil
	}
	for _, egress := range sent {
		egressTS, err := f.transport.RecvTxTimestamp(egress, msg)
		if err != nil {
			f.fault(egress, err)
			continue
		}
		residence := egressTS.Sub(ingressTS)
		if ratio := f.timer.RateRatio(); ratio != 1.0 {
			residence = time.Duration(float64(residence) * ratio)
		}
		if err := f.complete(ingress, egress, msg, residence); err != nil {
			log.WithError(err).Warnf("tc: completing event message on port %d", egress)
		}
	}
	return nil
}

func (f *Forwarder) complete(ingress, egress uint16, msg ptp.Message, residence time.Duration) error {
	switch msg.Type() {
	case ptp.MessageSync:
		return f.completeSyncFollowUp(ingress, egress, msg, residence)
	case ptp.MessageDelayReq:
		if err := f.corr.Stash(egress, msg, ingress, residence, f.timer.MonotonicNow()); err != nil {
			f.fault(egress, err)
			return err
		}
		return nil
	}
	return nil
}

func (f *Forwarder) completeSyncFollowUp(ingress, egress uint16, msg ptp.Message, residence time.Duration) error {
	fup, r, matched, err := f.corr.CompleteSyncFollowUp(egress, ingress, msg, residence, f.timer.MonotonicNow())
	if err != nil {
		f.fault(egress, err)
		return err
	}
	if !matched {
		return nil
	}
	orig := fup.Correction()
	corr := orig.
		Add(r).
		Add(f.clock.PortPeerDelay(ingress)).
		Add(f.clock.PortAsymmetry(ingress))
	fup.SetCorrection(corr)
	origSource := fup.Source()
	f.applyIdentity(ingress, egress, fup)
	_, sendErr := f.transport.Send(egress, SendGeneral, fup)
	fup.SetSource(origSource)
	fup.SetCorrection(orig)
	if sendErr != nil {
		f.fault(egress, sendErr)
		return sendErr
	}
	return nil
}

// onestepPart is the half of a Sync/FollowUp pair handed to fuseOneStep.
type onestepPart struct {
	isSync    bool
	seq       uint16
	source    ptp.PortIdentity
	origin    ptp.Timestamp
	corr      ptp.Correction
	reserved2 uint32
}

// fuseOneStep implements the tri-state Empty/HaveSync/HaveFollowUp machine
// that merges a one-step ingress port's separately-arriving Sync and
// FollowUp into a single one-step Sync on egress (§4.5, §9).
func (f *Forwarder) fuseOneStep(ingress uint16, ingressTS time.Time, part onestepPart) error {
	half, ok := f.onestep[ingress]
	if !ok {
		half = &onestepHalf{}
		f.onestep[ingress] = half
	}

	haveOther := half.state != onestepEmpty && half.seq == part.seq && half.source == part.source &&
		((half.state == onestepHaveSync && !part.isSync) || (half.state == onestepHaveFollowUp && part.isSync))

	if !haveOther {
		if part.isSync {
			half.state = onestepHaveSync
		} else {
			half.state = onestepHaveFollowUp
		}
		half.seq = part.seq
		half.source = part.source
		half.origin = part.origin
		half.corr = part.corr
		half.reserved2 = part.reserved2
		return nil
	}

	// The fused Sync always carries the FollowUp half's origin timestamp
	// (the Sync's own originTimestamp is typically zero/estimated) and the
	// genuine Sync half's reserved2, regardless of which one arrived first
	// (tc.c tc_twostep_to_onestep_syfup: "send Fup as Sync" / "send Sync
	// with Fup info" both end up using the Follow_Up's timestamp).
	var origin ptp.Timestamp
	var reserved2 uint32
	if part.isSync {
		// part is the genuine Sync; half holds the saved FollowUp.
		origin = half.origin
		reserved2 = part.reserved2
	} else {
		// part is the genuine FollowUp; half holds the saved Sync.
		origin = part.origin
		reserved2 = half.reserved2
	}
	corr := half.corr.AddCorrection(part.corr)
	*half = onestepHalf{}

	synthesized := &ptp.Sync{
		Header: ptp.Header{
			MessageType:        ptp.MessageSync,
			DomainNumber:       f.clock.DomainNumber(),
			CorrectionField:    corr,
			Reserved2:          reserved2,
			SourcePortIdentity: part.source,
			SequenceID:         part.seq,
		},
		OriginTimestamp: origin,
	}
	return f.forwardEvent(ingress, ingressTS, synthesized)
}

// applyIdentity rewrites msg's source identity for HSR ring injection in
// place, if RingSourceIdentity applies to this (ingress, egress) pair.
func (f *Forwarder) applyIdentity(ingress, egress uint16, msg ptp.Message) {
	if f.clock.IsHSR() {
		if id, ok := RingSourceIdentity(f.clock, ingress, egress); ok {
			msg.SetSource(id)
			return
		}
	}
	f.applyLANTagging(ingress, egress, msg)
}

// applyLANTagging stamps the PRP LAN tag into msg's source identity, if
// PRPSourceLANBits applies to this (ingress, egress) pair.
func (f *Forwarder) applyLANTagging(ingress, egress uint16, msg ptp.Message) {
	if !f.clock.IsPRP() {
		return
	}
	if bits, apply := PRPSourceLANBits(f.clock, ingress, egress); apply {
		msg.SetSource(msg.Source().WithLANBits(bits))
	}
}

func (f *Forwarder) fault(port uint16, err error) {
	f.clock.IncErrorCounter(port)
	f.clock.Dispatch(port, EventFaultDetected)
	log.Debug(&TransportError{Port: port, Err: err})
}
