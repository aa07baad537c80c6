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

import "time"

// TxD is a pending cross-port correlation entry (§3 "TC transmit
// descriptor"): a message this clock has already transmitted on one port,
// kept around until its Sync/FollowUp or DelayReq/DelayResp counterpart
// shows up, or until it goes stale.
type TxD struct {
	msg       *Ref
	residence time.Duration
	ingress   uint16
	created   time.Time
}

// stale reports whether txd is older than the §5 one-second prune window as
// of now.
func (txd *TxD) stale(now time.Time) bool {
	return now.Sub(txd.created) >= time.Second
}
