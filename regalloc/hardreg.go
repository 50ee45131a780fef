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

// Every possible spill weighs less than this.
const _W_infinite = 99999

// _Spill records how to free the register from one interfering resident:
// which lifetime to evict and where to split it.
type _Spill struct {
    lt  *Lifetime
    pos SplitPos
}

// _HardRegAllocation tracks the lifetimes currently resident in one hard
// register and how to spill them. Correctness relies on the driver
// processing lifetimes in non-decreasing begin order.
type _HardRegAllocation struct {
    residents []*Lifetime
    last      *Lifetime
    spills    []_Spill
}

// tryAssign expires residents that end before the new lifetime begins,
// then admits the new lifetime unless a remaining resident interferes.
func (self *_HardRegAllocation) tryAssign(lt *Lifetime) bool {
    self.last = lt
    keep := self.residents[:0]

    /* expire residents that ended before lt begins */
    for _, v := range self.residents {
        if v.end() > lt.begin() {
            keep = append(keep, v)
        }
    }
    self.residents = keep

    /* any remaining interference blocks the assignment */
    for _, v := range self.residents {
        if v.TestInterference(lt) {
            return false
        }
    }

    /* no interference, admit */
    self.residents = append(self.residents, lt)
    return true
}

// considerSpill computes the cost of freeing this register for lt, and
// records the spill plan used by spillAndAssign. An infinite weight means
// the register cannot be freed at lt.begin().
func (self *_HardRegAllocation) considerSpill(lt *Lifetime) int {
    if self.last != lt {
        panic("regalloc: considerSpill without a preceding tryAssign")
    }

    weight := 0
    self.spills = self.spills[:0]

    /* plan one spill per interfering resident */
    for _, v := range self.residents {
        if !v.TestInterference(lt) {
            continue
        }

        /* a use spanning across lt.begin() pins the register */
        kind, pos := v.FindSplitPos(lt.begin())
        if kind == SplitImpossible {
            return _W_infinite
        }

        /* an evicted use in the very instruction where lt begins will
         * compete with lt when it is reallocated; if it cannot use any
         * register outside lt's class, lt could be evicted right back,
         * spilling twice for nothing */
        if kind == SplitConflict {
            if v.GetClass().IsSubsetOf(lt.GetClass()) {
                return _W_infinite
            }
        }

        /* evicting an already spilled tiny lifetime is free */
        self.spills = append(self.spills, _Spill { lt: v, pos: pos })
        if v.SpillSlot() == -1 {
            weight += v.weight
        }
    }

    if weight >= _W_infinite {
        panic("regalloc: finite spill weight overflow")
    }
    return weight
}

// spillAndAssign executes the plan recorded by considerSpill: evicted
// lifetimes get the spill slot unless they already have one, their
// remaining uses are split into tiny lifetimes merged into the pending
// list at their sorted positions, and lt becomes resident.
func (self *_HardRegAllocation) spillAndAssign(lt *Lifetime, slot int, list *_LifetimeList, at int) {
    if self.last != lt {
        panic("regalloc: spillAndAssign without a preceding considerSpill")
    }
    if len(self.spills) == 0 {
        panic("regalloc: nothing to spill")
    }

    /* evict every planned resident */
    for i := range self.spills {
        v := self.spills[i].lt

        /* spilled lifetimes never overlap in time here, they can share
         * the slot */
        if v.SpillSlot() == -1 {
            v.setSpill(slot)
        }

        /* re-queue the evicted uses for allocation */
        list.merge(at, v.Split(self.spills[i].pos))
        self.remove(v)
    }

    /* all interference is gone, admit */
    self.residents = append(self.residents, lt)
}

func (self *_HardRegAllocation) remove(lt *Lifetime) {
    keep := self.residents[:0]
    for _, v := range self.residents {
        if v != lt {
            keep = append(keep, v)
        }
    }
    self.residents = keep
}
