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

// MessageType is the PTP messageType field (Table 36).
type MessageType uint8

const (
	MessageSync       MessageType = 0x0
	MessageDelayReq   MessageType = 0x1
	MessageFollowUp   MessageType = 0x8
	MessageDelayResp  MessageType = 0x9
	MessageAnnounce   MessageType = 0xB
	MessageSignaling  MessageType = 0xC
	MessageManagement MessageType = 0xD
)

var messageTypeNames = map[MessageType]string{
	MessageSync:       "SYNC",
	MessageDelayReq:   "DELAY_REQ",
	MessageFollowUp:   "FOLLOW_UP",
	MessageDelayResp:  "DELAY_RESP",
	MessageAnnounce:   "ANNOUNCE",
	MessageSignaling:  "SIGNALING",
	MessageManagement: "MANAGEMENT",
}

func (m MessageType) String() string {
	if s, ok := messageTypeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MessageType(0x%x)", uint8(m))
}

// IsEvent reports whether m is timestamped on the event port (319/UDP) —
// Sync and Delay_Req — as opposed to the general port (320/UDP).
func (m MessageType) IsEvent() bool {
	return m == MessageSync || m == MessageDelayReq
}

// ClockType classifies the role a local PTP Instance plays (§3).
type ClockType uint8

const (
	ClockOC  ClockType = iota // ordinary clock
	ClockBC                   // boundary clock
	ClockP2PTC                // peer-to-peer transparent clock
	ClockE2ETC                // end-to-end transparent clock
)

func (c ClockType) String() string {
	switch c {
	case ClockOC:
		return "OC"
	case ClockBC:
		return "BC"
	case ClockP2PTC:
		return "P2P_TC"
	case ClockE2ETC:
		return "E2E_TC"
	default:
		return "UNKNOWN"
	}
}

// IsTC reports whether c is either transparent-clock variant.
func (c ClockType) IsTC() bool { return c == ClockP2PTC || c == ClockE2ETC }

// Header is the 34-byte PTP common header (Table 35). Only the fields the
// BMCA/TC core reads or rewrites are modeled; the whole flagField is kept
// as-is. The other fields (transportSpecific, messageLength, control,
// logMessageInterval) are not kept: unmarshalHeader drops them and
// marshalHeaderTo writes them as zero.
type Header struct {
	MessageType        MessageType
	Version             uint8
	DomainNumber        uint8
	FlagField           uint16
	CorrectionField     Correction
	Reserved2           uint32 // carried through the one-step/two-step fusion of §4.5/§9
	SourcePortIdentity  PortIdentity
	SequenceID          uint16
}

const (
	// FlagTwoStep marks a Sync message as requiring a matching FollowUp.
	FlagTwoStep uint16 = 1 << (8 + 1)
)

// TwoStep reports whether the two-step flag is set.
func (h Header) TwoStep() bool { return h.FlagField&FlagTwoStep != 0 }

// headerSize is the on-wire length of Header in bytes (Table 35).
const headerSize = 34

func unmarshalHeader(h *Header, b []byte) error {
	if len(b) < headerSize {
		return fmt.Errorf("not enough data to decode header: got %d bytes, need %d", len(b), headerSize)
	}
	h.MessageType = MessageType(b[0] & 0xf)
	h.Version = b[1]
	h.DomainNumber = b[4]
	h.FlagField = binary.BigEndian.Uint16(b[6:])
	h.CorrectionField = Correction(binary.BigEndian.Uint64(b[8:]))
	h.Reserved2 = binary.BigEndian.Uint32(b[16:])
	h.SourcePortIdentity.ClockIdentity = ClockIdentity(binary.BigEndian.Uint64(b[20:]))
	h.SourcePortIdentity.PortNumber = binary.BigEndian.Uint16(b[28:])
	h.SequenceID = binary.BigEndian.Uint16(b[30:])
	return nil
}

func marshalHeaderTo(h Header, b []byte) {
	b[0] = byte(h.MessageType) & 0xf
	b[1] = h.Version
	b[4] = h.DomainNumber
	binary.BigEndian.PutUint16(b[6:], h.FlagField)
	binary.BigEndian.PutUint64(b[8:], uint64(h.CorrectionField))
	binary.BigEndian.PutUint32(b[16:], h.Reserved2)
	binary.BigEndian.PutUint64(b[20:], uint64(h.SourcePortIdentity.ClockIdentity))
	binary.BigEndian.PutUint16(b[28:], h.SourcePortIdentity.PortNumber)
	binary.BigEndian.PutUint16(b[30:], h.SequenceID)
}

// Timestamp is a PTP timestamp: seconds since epoch (48 bits on the wire) plus
// nanoseconds (§6). The core only moves these around untouched except for the
// one-step/two-step origin-timestamp transplant of §4.5/§9.
type Timestamp struct {
	Seconds     uint64 // low 48 bits significant
	Nanoseconds uint32
}

// AnnounceBody carries the fields the BMCA Dataset is built from (Table 43).
type AnnounceBody struct {
	GrandmasterPriority1    uint8
	GrandmasterClockQuality ClockQuality
	GrandmasterPriority2    uint8
	GrandmasterIdentity     ClockIdentity
	StepsRemoved            uint16
}

// Announce is a full Announce message.
type Announce struct {
	Header
	AnnounceBody
}

// Sync is a full Sync message body (Table 44); DelayReq shares the same wire
// shape and is represented by the same struct with Header.MessageType set
// accordingly, matching facebook/time's SyncDelayReq.
type Sync struct {
	Header
	OriginTimestamp Timestamp
}

// FollowUp is a full Follow_Up message (Table 45).
type FollowUp struct {
	Header
	PreciseOriginTimestamp Timestamp
}

// DelayResp is a full Delay_Resp message (Table 46).
type DelayResp struct {
	Header
	ReceiveTimestamp       Timestamp
	RequestingPortIdentity PortIdentity
}
