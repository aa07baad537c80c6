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

// Ref is an explicit reference count wrapped around a ptp.Message (§5
// "Message ownership"). Go's garbage collector makes the count unnecessary
// for memory safety, but both the ingress delivery path and one or more
// pending TxDs can retain the same message, and the testable property in §8
// ("its message refcount is zero" after a prune) asks for the same get/put
// discipline the C source uses with msg_get/msg_put.
type Ref struct {
	msg ptp.Message
	n   int
}

// NewRef wraps msg with a refcount of zero; the first owner must call Get.
func NewRef(msg ptp.Message) *Ref {
	return &Ref{msg: msg}
}

// Get records a new owner and returns r for chaining.
func (r *Ref) Get() *Ref {
	r.n++
	return r
}

// Put releases one owner's claim.
func (r *Ref) Put() {
	r.n--
}

// Count reports the current number of outstanding owners.
func (r *Ref) Count() int { return r.n }

// Msg returns the wrapped message.
func (r *Ref) Msg() ptp.Message { return r.msg }
