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

import (
	"encoding/binary"
	"fmt"
)

func marshalTimestampTo(t Timestamp, b []byte) {
	var secs [6]byte
	v := t.Seconds
	for i := 5; i >= 0; i-- {
		secs[i] = byte(v)
		v >>= 8
	}
	copy(b, secs[:])
	binary.BigEndian.PutUint32(b[6:], t.Nanoseconds)
}

func unmarshalTimestamp(b []byte) Timestamp {
	var v uint64
	for i := 0; i < 6; i++ {
		v = v<<8 | uint64(b[i])
	}
	return Timestamp{Seconds: v, Nanoseconds: binary.BigEndian.Uint32(b[6:])}
}

// MarshalBinary encodes an Announce message, all multi-byte fields
// big-endian (§6).
func (p *Announce) MarshalBinary() ([]byte, error) {
	b := make([]byte, headerSize+20)
	marshalHeaderTo(p.Header, b)
	n := headerSize
	b[n] = p.GrandmasterPriority1
	b[n+1] = byte(p.GrandmasterClockQuality.ClockClass)
	b[n+2] = byte(p.GrandmasterClockQuality.ClockAccuracy)
	binary.BigEndian.PutUint16(b[n+3:], p.GrandmasterClockQuality.OffsetScaledLogVariance)
	b[n+5] = p.GrandmasterPriority2
	binary.BigEndian.PutUint64(b[n+6:], uint64(p.GrandmasterIdentity))
	binary.BigEndian.PutUint16(b[n+14:], p.StepsRemoved)
	return b, nil
}

// UnmarshalBinary decodes bytes into an Announce message.
func (p *Announce) UnmarshalBinary(b []byte) error {
	if err := unmarshalHeader(&p.Header, b); err != nil {
		return err
	}
	if len(b) < headerSize+16 {
		return fmt.Errorf("not enough data to decode Announce body")
	}
	n := headerSize
	p.GrandmasterPriority1 = b[n]
	p.GrandmasterClockQuality.ClockClass = ClockClass(b[n+1])
	p.GrandmasterClockQuality.ClockAccuracy = ClockAccuracy(b[n+2])
	p.GrandmasterClockQuality.OffsetScaledLogVariance = binary.BigEndian.Uint16(b[n+3:])
	p.GrandmasterPriority2 = b[n+5]
	p.GrandmasterIdentity = ClockIdentity(binary.BigEndian.Uint64(b[n+6:]))
	p.StepsRemoved = binary.BigEndian.Uint16(b[n+14:])
	return nil
}

// MarshalBinary encodes a Sync/Delay_Req message.
func (p *Sync) MarshalBinary() ([]byte, error) {
	b := make([]byte, headerSize+10)
	marshalHeaderTo(p.Header, b)
	marshalTimestampTo(p.OriginTimestamp, b[headerSize:])
	return b, nil
}

// UnmarshalBinary decodes bytes into a Sync/Delay_Req message.
func (p *Sync) UnmarshalBinary(b []byte) error {
	if err := unmarshalHeader(&p.Header, b); err != nil {
		return err
	}
	if len(b) < headerSize+10 {
		return fmt.Errorf("not enough data to decode Sync body")
	}
	p.OriginTimestamp = unmarshalTimestamp(b[headerSize:])
	return nil
}

// MarshalBinary encodes a Follow_Up message.
func (p *FollowUp) MarshalBinary() ([]byte, error) {
	b := make([]byte, headerSize+10)
	marshalHeaderTo(p.Header, b)
	marshalTimestampTo(p.PreciseOriginTimestamp, b[headerSize:])
	return b, nil
}

// UnmarshalBinary decodes bytes into a Follow_Up message.
func (p *FollowUp) UnmarshalBinary(b []byte) error {
	if err := unmarshalHeader(&p.Header, b); err != nil {
		return err
	}
	if len(b) < headerSize+10 {
		return fmt.Errorf("not enough data to decode FollowUp body")
	}
	p.PreciseOriginTimestamp = unmarshalTimestamp(b[headerSize:])
	return nil
}

// MarshalBinary encodes a Delay_Resp message.
func (p *DelayResp) MarshalBinary() ([]byte, error) {
	b := make([]byte, headerSize+20)
	marshalHeaderTo(p.Header, b)
	marshalTimestampTo(p.ReceiveTimestamp, b[headerSize:])
	binary.BigEndian.PutUint64(b[headerSize+10:], uint64(p.RequestingPortIdentity.ClockIdentity))
	binary.BigEndian.PutUint16(b[headerSize+18:], p.RequestingPortIdentity.PortNumber)
	return b, nil
}

// UnmarshalBinary decodes bytes into a Delay_Resp message.
func (p *DelayResp) UnmarshalBinary(b []byte) error {
	if err := unmarshalHeader(&p.Header, b); err != nil {
		return err
	}
	if len(b) < headerSize+20 {
		return fmt.Errorf("not enough data to decode DelayResp body")
	}
	p.ReceiveTimestamp = unmarshalTimestamp(b[headerSize:])
	p.RequestingPortIdentity.ClockIdentity = ClockIdentity(binary.BigEndian.Uint64(b[headerSize+10:]))
	p.RequestingPortIdentity.PortNumber = binary.BigEndian.Uint16(b[headerSize+18:])
	return nil
}
