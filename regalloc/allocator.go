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

// Package regalloc implements more-or-less traditional linear scan
// register allocation over the machine IR.
//
// Input is the virtual register lifetime list, sorted by begin. Each
// lifetime is a list of continuous live ranges with holes in between, and
// each live range tracks the instructions that actually use the register.
//
// The allocator walks the sorted list and assigns lifetimes to hard
// registers. Lifetimes that do not interfere, so the live ranges of one
// fit into the holes of another, share a hard register.
//
// When no hard register is free, the allocator picks one to evict: every
// resident lifetime interfering with the one being allocated is spilled to
// a stack slot and split into tiny lifetimes, one per remaining use. Tiny
// lifetimes that begin after the current position are merged back into the
// pending list and allocated in order like everything else. A tiny
// lifetime that overlaps the current begin cannot be reallocated later and
// cannot keep its register either, so such a spill is impossible and the
// candidate register is rejected.
package regalloc

import (
    `github.com/cloudwego/lir/mir`
)

// _LifetimeList is the global pending list, sorted by begin. Splitting a
// spilled lifetime inserts its fragments at their sorted position past the
// driver cursor, so plain index iteration picks them up naturally.
type _LifetimeList struct {
    items []*Lifetime
}

// merge inserts src, itself sorted by begin, starting the search at from.
// A fragment is placed after every pending lifetime with the same or an
// earlier begin.
func (self *_LifetimeList) merge(from int, src []*Lifetime) {
    i := from
    for _, lt := range src {
        for i < len(self.items) && self.items[i].begin() <= lt.begin() {
            i++
        }
        self.items = append(self.items, nil)
        copy(self.items[i + 1:], self.items[i:])
        self.items[i] = lt
        i++
    }
}

type _Allocator struct {
    p    *mir.Program
    list _LifetimeList
    regs [mir.MaxHardRegs]_HardRegAllocation
}

func (self *_Allocator) tryAssignHardReg(lt *Lifetime, r mir.Reg) bool {
    if self.regs[r].tryAssign(lt) {
        lt.hard = r
        return true
    }
    return false
}

func (self *_Allocator) spillAndAssignHardReg(lt *Lifetime, r mir.Reg, at int) {
    self.regs[r].spillAndAssign(lt, self.p.AllocSpill(), &self.list, at + 1)
    lt.hard = r
}

func (self *_Allocator) allocateLifetime(at int) {
    lt := self.list.items[at]
    rc := lt.GetClass()

    /* the move hint register first, a cheap win for later copy
     * elimination */
    pref := lt.findMoveHint().hard
    if pref != mir.Noreg && rc.Has(pref) && self.tryAssignHardReg(lt, pref) {
        return
    }

    /* then every class register in enumeration order, the first free one
     * wins; copy renaming cleans up after allocation, there is no point
     * searching further */
    for _, r := range rc.Regs {
        if r != pref && self.tryAssignHardReg(lt, r) {
            return
        }
    }

    /* no register fits, pick the cheapest one to evict */
    best := _W_infinite
    breg := mir.Noreg
    for _, r := range rc.Regs {
        if w := self.regs[r].considerSpill(lt); best > w {
            best = w
            breg = r
        }
    }

    /* valid IR never produces unsatisfiable pressure */
    if best >= _W_infinite {
        panic("regalloc: cannot free a hard register for " + rc.String() + " lifetime")
    }
    self.spillAndAssignHardReg(lt, breg, at)
}

// run walks the pending list and assigns every lifetime. The list grows
// while we walk it, fragments split from spilled lifetimes land past the
// cursor.
func (self *_Allocator) run() {
    for i := 0; i < len(self.list.items); i++ {
        self.allocateLifetime(i)
    }
}

// commit patches the IR with the assignments and flattens the inserted
// spill code into the instruction stream.
func (self *_Allocator) commit() {
    for _, lt := range self.list.items {
        lt.Rewrite(self.p)
    }
    self.p.Flatten()
}

// AllocRegs maps every virtual register of the program onto hard registers
// and spill slots, patching the IR in place.
func AllocRegs(p *mir.Program) {
    a := new(_Allocator)
    a.p = p
    a.list.items = collectLifetimes(p)
    debugLifetimes(a.list.items)
    a.run()
    a.commit()
    debugAllocation(a.list.items)
}
