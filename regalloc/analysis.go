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

package regalloc

import (
    `github.com/cloudwego/lir/mir`
)

// LifetimeAnalysis builds the lifetime list, sorted by begin, from the
// instruction stream and the per-block live-in and live-out sets. The
// caller owns the program point and feeds one basic block at a time, in
// layout order:
//
//      SetLiveIn(r, at)       for every live-in register
//      at = AddInsn(pos, at)  for every instruction
//      SetLiveOut(r, at)      for every live-out register
//      EndBasicBlock(at)
//
// The IR is assumed structurally valid, violations are fatal.
type LifetimeAnalysis struct {
    bbTick    ProgramPoint
    lifetimes []*Lifetime
    vregs     []*Lifetime
}

func NewLifetimeAnalysis(nvreg int) *LifetimeAnalysis {
    return &LifetimeAnalysis {
        vregs: make([]*Lifetime, nvreg),
    }
}

// Lifetimes is the sorted lifetime list built so far.
func (self *LifetimeAnalysis) Lifetimes() []*Lifetime {
    return self.lifetimes
}

// getLifetime ensures a lifetime exists for r and has a live range
// covering the current basic block, starting no later than begin.
func (self *LifetimeAnalysis) getLifetime(r mir.Reg, begin ProgramPoint) *Lifetime {
    i := r.VirtualIndex()

    /* grow the map for scratch registers allocated after construction */
    if i >= len(self.vregs) {
        vregs := make([]*Lifetime, i + 1)
        copy(vregs, self.vregs)
        self.vregs = vregs
    }

    /* newly seen register, its first live range starts at begin */
    if self.vregs[i] == nil {
        lt := newLifetime(begin)
        self.vregs[i] = lt
        self.lifetimes = append(self.lifetimes, lt)
        return lt
    }

    /* the lifetime must have a live range inside the current block; the
     * last range begin tells whether it has one, since the lifetime end
     * equals the block start tick both when the register lives out of the
     * previous block and when it lives into this one without uses yet */
    lt := self.vregs[i]
    if lt.lastRangeBegin() < self.bbTick {
        lt.startRange(begin)
    }
    return lt
}

func (self *LifetimeAnalysis) appendUse(use Use) {
    self.getLifetime(use.vreg(), use.begin).appendUse(use)
}

// trySetMoveHint unions the move hints of both ends of a register copy, so
// the allocator can try to give them one hard register.
func (self *LifetimeAnalysis) trySetMoveHint(p *mir.Insn) {
    if !p.IsCopy() {
        return
    }
    if p.NumRegs() != 2 {
        panic("regalloc: copy instruction must have exactly 2 register operands")
    }

    /* both ends must be virtual */
    dst := p.RegAt(0)
    src := p.RegAt(1)
    if !dst.IsVirtualReg() || !src.IsVirtualReg() {
        return
    }

    /* lifetimes exist, the copy itself was just added */
    self.vregs[dst.VirtualIndex()].setMoveHint(self.vregs[src.VirtualIndex()])
}

// AddInsn gives the instruction at pos the two program points at and at+1
// and records a Use for every virtual register operand. It returns the
// program point of the next instruction. Use and use-def operands are
// appended before pure defs so that, per register, uses stay ordered by
// begin.
func (self *LifetimeAnalysis) AddInsn(pos mir.Pos, at ProgramPoint) ProgramPoint {
    ins := pos.Insn()

    /* use and use-def operands read at the first tick; a use-def stays
     * live through the write tick */
    for i := 0; i < ins.NumRegs(); i++ {
        if ins.RegAt(i).IsVirtualReg() {
            if k := ins.KindAt(i).Access; k.IsUse() {
                end := at + 1
                if k.IsDef() {
                    end = at + 2
                }
                self.appendUse(Use { pos: pos, index: i, begin: at, end: end })
            }
        }
    }

    /* def-only operands live from the write tick, processed later so that
     * holes can open between a last use and a later redefinition */
    for i := 0; i < ins.NumRegs(); i++ {
        if ins.RegAt(i).IsVirtualReg() {
            if k := ins.KindAt(i).Access; !k.IsUse() && k.IsDef() {
                self.appendUse(Use { pos: pos, index: i, begin: at + 1, end: at + 2 })
            }
        }
    }

    /* copies connect both ends with a move hint */
    self.trySetMoveHint(ins)
    return at + 2
}

// SetLiveIn seeds or extends the lifetime of r to cover the first tick of
// the current block. It must be called before any AddInsn of the block.
func (self *LifetimeAnalysis) SetLiveIn(r mir.Reg, at ProgramPoint) {
    if at != self.bbTick {
        panic("regalloc: SetLiveIn after instructions were added")
    }
    self.getLifetime(r, at)
}

// SetLiveOut extends the lifetime of r to the last tick of the current
// block. The lifetime must exist: a live-out register is either live-in or
// defined inside the block.
func (self *LifetimeAnalysis) SetLiveOut(r mir.Reg, at ProgramPoint) {
    i := r.VirtualIndex()
    if i >= len(self.vregs) || self.vregs[i] == nil {
        panic("regalloc: live-out register has no lifetime: " + r.String())
    }
    self.vregs[i].setEnd(at)
}

// EndBasicBlock commits the epoch marker so the next block can tell
// whether an existing lifetime already covers it.
func (self *LifetimeAnalysis) EndBasicBlock(at ProgramPoint) {
    self.bbTick = at
}

// collectLifetimes runs the analysis over the whole program.
func collectLifetimes(p *mir.Program) []*Lifetime {
    at := ProgramPoint(0)
    la := NewLifetimeAnalysis(2 * p.NumVRegs())

    /* blocks are scanned in layout order */
    for _, bb := range p.Blocks {
        for _, r := range bb.LiveIn {
            la.SetLiveIn(r, at)
        }
        for i := range bb.Ins {
            at = la.AddInsn(bb.PosAt(i), at)
        }
        for _, r := range bb.LiveOut {
            la.SetLiveOut(r, at)
        }
        la.EndBasicBlock(at)
    }
    return la.Lifetimes()
}
