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

package ptp

// Message is the common surface the TC forwarder and correlator need from any
// of Announce, Sync, FollowUp or DelayResp, without caring which concrete
// message body it is carrying (facebook/time's Packet interface plays the
// same role for the wider protocol package).
type Message interface {
	Type() MessageType
	SeqID() uint16
	Source() PortIdentity
	SetSource(PortIdentity)
	Domain() uint8
	Correction() Correction
	SetCorrection(Correction)
}

func (p *Announce) Type() MessageType              { return p.Header.MessageType }
func (p *Announce) SeqID() uint16                  { return p.Header.SequenceID }
func (p *Announce) Source() PortIdentity           { return p.Header.SourcePortIdentity }
func (p *Announce) SetSource(id PortIdentity)      { p.Header.SourcePortIdentity = id }
func (p *Announce) Domain() uint8                  { return p.Header.DomainNumber }
func (p *Announce) Correction() Correction         { return p.Header.CorrectionField }
func (p *Announce) SetCorrection(c Correction)     { p.Header.CorrectionField = c }

func (p *Sync) Type() MessageType              { return p.Header.MessageType }
func (p *Sync) SeqID() uint16                  { return p.Header.SequenceID }
func (p *Sync) Source() PortIdentity           { return p.Header.SourcePortIdentity }
func (p *Sync) SetSource(id PortIdentity)      { p.Header.SourcePortIdentity = id }
func (p *Sync) Domain() uint8                  { return p.Header.DomainNumber }
func (p *Sync) Correction() Correction         { return p.Header.CorrectionField }
func (p *Sync) SetCorrection(c Correction)     { p.Header.CorrectionField = c }

func (p *FollowUp) Type() MessageType              { return p.Header.MessageType }
func (p *FollowUp) SeqID() uint16                  { return p.Header.SequenceID }
func (p *FollowUp) Source() PortIdentity           { return p.Header.SourcePortIdentity }
func (p *FollowUp) SetSource(id PortIdentity)      { p.Header.SourcePortIdentity = id }
func (p *FollowUp) Domain() uint8                  { return p.Header.DomainNumber }
func (p *FollowUp) Correction() Correction         { return p.Header.CorrectionField }
func (p *FollowUp) SetCorrection(c Correction)     { p.Header.CorrectionField = c }

func (p *DelayResp) Type() MessageType              { return p.Header.MessageType }
func (p *DelayResp) SeqID() uint16                  { return p.Header.SequenceID }
func (p *DelayResp) Source() PortIdentity           { return p.Header.SourcePortIdentity }
func (p *DelayResp) SetSource(id PortIdentity)      { p.Header.SourcePortIdentity = id }
func (p *DelayResp) Domain() uint8                  { return p.Header.DomainNumber }
func (p *DelayResp) Correction() Correction         { return p.Header.CorrectionField }
func (p *DelayResp) SetCorrection(c Correction)     { p.Header.CorrectionField = c }
