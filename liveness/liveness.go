/*
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package liveness computes the per-block live-in and live-out virtual
// register sets consumed by the register allocator.
package liveness

import (
    `github.com/cloudwego/lir/mir`
    `github.com/oleiade/lane`
)

// _RegSet is a virtual register bit set.
type _RegSet []uint64

func newRegSet(nvreg int) _RegSet {
    return make(_RegSet, (nvreg + 63) / 64)
}

func (self _RegSet) add(r mir.Reg) {
    i := r.VirtualIndex()
    self[i / 64] |= uint64(1) << uint(i % 64)
}

func (self _RegSet) remove(r mir.Reg) {
    i := r.VirtualIndex()
    self[i / 64] &^= uint64(1) << uint(i % 64)
}

func (self _RegSet) union(other _RegSet) {
    for i, v := range other {
        self[i] |= v
    }
}

func (self _RegSet) equals(other _RegSet) bool {
    for i, v := range other {
        if self[i] != v {
            return false
        }
    }
    return true
}

func (self _RegSet) toregs() []mir.Reg {
    var ret []mir.Reg
    for i, w := range self {
        for b := 0; w != 0; b++ {
            if w & 1 != 0 {
                ret = append(ret, mir.Vreg(i * 64 + b))
            }
            w >>= 1
        }
    }
    return ret
}

// Analyzer computes live-in sets with a backward fixed-point iteration
// over the CFG. It must run to completion before lifetime analysis starts.
type Analyzer struct {
    p      *mir.Program
    livein []_RegSet
}

func NewAnalyzer(p *mir.Program) *Analyzer {
    a := new(Analyzer)
    a.p = p
    a.livein = make([]_RegSet, p.NumBlocks())
    for i := range a.livein {
        a.livein[i] = newRegSet(p.NumVRegs())
    }
    return a
}

// liveout is the union of the live-in sets of all successors. Exit blocks
// keep every register dead.
func (self *Analyzer) liveout(bb *mir.BasicBlock) _RegSet {
    rs := newRegSet(self.p.NumVRegs())
    for _, e := range bb.Out {
        rs.union(self.livein[e.Dst.Id])
    }
    return rs
}

// visit recomputes the live-in set of bb, and reports whether it changed.
func (self *Analyzer) visit(bb *mir.BasicBlock) bool {
    rs := self.liveout(bb)

    /* walk instructions backwards; the same register can be both def and
     * use, so clear all defs before setting the inputs */
    for i := len(bb.Ins) - 1; i >= 0; i-- {
        ins := bb.Ins[i]
        for j := 0; j < ins.NumRegs(); j++ {
            if ins.RegAt(j).IsVirtualReg() && ins.KindAt(j).Access.IsDef() {
                rs.remove(ins.RegAt(j))
            }
        }
        for j := 0; j < ins.NumRegs(); j++ {
            if ins.RegAt(j).IsVirtualReg() && ins.KindAt(j).Access.IsInput() {
                rs.add(ins.RegAt(j))
            }
        }
    }

    /* commit if anything changed */
    if self.livein[bb.Id].equals(rs) {
        return false
    }
    self.livein[bb.Id] = rs
    return true
}

// Run iterates to the fixed point. Blocks are seeded in reverse layout
// order to speed up propagation from successors to predecessors.
func (self *Analyzer) Run() {
    q := lane.NewQueue()
    inq := make(map[int]bool, len(self.p.Blocks))

    /* seed the worklist */
    for i := len(self.p.Blocks) - 1; i >= 0; i-- {
        q.Enqueue(self.p.Blocks[i])
        inq[self.p.Blocks[i].Id] = true
    }

    /* iterate until nothing changes */
    for !q.Empty() {
        bb := q.Dequeue().(*mir.BasicBlock)
        inq[bb.Id] = false

        /* a change re-queues all predecessors */
        if self.visit(bb) {
            for _, e := range bb.In {
                if !inq[e.Src.Id] {
                    inq[e.Src.Id] = true
                    q.Enqueue(e.Src)
                }
            }
        }
    }
}

// IsLiveIn checks whether r is live at the entry of bb.
func (self *Analyzer) IsLiveIn(bb *mir.BasicBlock, r mir.Reg) bool {
    i := r.VirtualIndex()
    return self.livein[bb.Id][i / 64] & (uint64(1) << uint(i % 64)) != 0
}

// Publish stores the computed sets onto the blocks, sorted by register
// index as the lifetime analysis requires.
func (self *Analyzer) Publish() {
    for _, bb := range self.p.Blocks {
        bb.LiveIn = self.livein[bb.Id].toregs()
        bb.LiveOut = self.liveout(bb).toregs()
    }
}

// Apply computes and publishes liveness for the whole program.
func Apply(p *mir.Program) {
    a := NewAnalyzer(p)
    a.Run()
    a.Publish()
}
