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

// pool is a free-list of TxD descriptors, avoiding allocator churn in
// steady-state forwarding (§5 "Resource pools"). Unlike the C source's
// single process-wide TAILQ, it is owned by exactly one Correlator rather
// than a package-level singleton — a rewrite explicitly invited by §9
// ("no hidden globals"); a process that runs one Correlator per Clock still
// gets a single owner for its TxD pool.
//
// maxOutstanding, when non-zero, bounds how many TxDs may be live at once;
// exceeding it is how §7's AllocFailure becomes observable instead of
// hypothetical, since a plain Go slice would otherwise never fail to grow.
type pool struct {
	free           []*TxD
	outstanding    int
	maxOutstanding int
}

func newPool(maxOutstanding int) *pool {
	return &pool{maxOutstanding: maxOutstanding}
}

func (p *pool) get() *TxD {
	if p.maxOutstanding > 0 && p.outstanding >= p.maxOutstanding {
		return nil
	}
	p.outstanding++
	if n := len(p.free); n > 0 {
		txd := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		*txd = TxD{}
		return txd
	}
	return &TxD{}
}

func (p *pool) put(txd *TxD) {
	*txd = TxD{}
	p.free = append(p.free, txd)
	p.outstanding--
}
