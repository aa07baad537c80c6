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

import ptp "github.com/westermo/gptp/ptp"

// onestepState is the tri-state slot tracking what half of a Sync/FollowUp
// pair is waiting to be fused into a single one-step Sync on egress (§4.5
// "Two-step -> one-step fusion", §9 "tagged variants for state" rather than a
// scratch buffer plus a valid flag).
type onestepState uint8

const (
	onestepEmpty onestepState = iota
	onestepHaveSync
	onestepHaveFollowUp
)

// onestepHalf holds whichever half of a Sync/FollowUp pair has arrived on a
// one-step ingress port, pending its counterpart.
type onestepHalf struct {
	state     onestepState
	seq       uint16
	source    ptp.PortIdentity
	origin    ptp.Timestamp
	corr      ptp.Correction
	reserved2 uint32
}
