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
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClockIdentityString(t *testing.T) {
	ci := ClockIdentity(0x001122fffe334455)
	require.Equal(t, "001122.fffe.334455", ci.String())
}

func TestNewClockIdentity(t *testing.T) {
	mac, err := net.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	ci, err := NewClockIdentity(mac)
	require.NoError(t, err)
	require.Equal(t, ClockIdentity(0x001122fffe334455), ci)

	_, err = NewClockIdentity(net.HardwareAddr{1, 2, 3})
	require.Error(t, err)
}

func TestPortIdentityCompare(t *testing.T) {
	a := PortIdentity{ClockIdentity: 1, PortNumber: 1}
	b := PortIdentity{ClockIdentity: 1, PortNumber: 2}
	c := PortIdentity{ClockIdentity: 2, PortNumber: 1}

	require.Equal(t, 0, a.Compare(a))
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, -1, a.Compare(c))
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
}

func TestPortIdentityLANBits(t *testing.T) {
	p := PortIdentity{ClockIdentity: 1, PortNumber: 3}
	a := p.WithLANBits(LANBitsRingA)
	require.Equal(t, LANBitsRingA, a.LANBits())
	require.Equal(t, uint16(3), a.PortNumber&^lanBitsMask)

	b := a.WithLANBits(LANBitsNone)
	require.Equal(t, LANBitsNone, b.LANBits())
	require.Equal(t, uint16(3), b.PortNumber)
}
