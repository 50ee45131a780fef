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
    `fmt`
    `strings`

    `github.com/cloudwego/lir/mir`
)

// ProgramPoint is an integer program position. Every instruction occupies
// two consecutive points: a read tick for its use operands and a write tick
// for its def operands, so a use and a def in the same instruction never
// spuriously interfere.
type ProgramPoint int

// Use is one access to a virtual register: the operand to rewrite, and the
// position where spill or reload code is inserted when the register does
// not survive in a hard register.
type Use struct {
    pos   mir.Pos
    index int
    begin ProgramPoint
    end   ProgramPoint
}

func (self *Use) vreg() mir.Reg {
    return self.pos.Insn().RegAt(self.index)
}

func (self *Use) kind() mir.RegKind {
    return self.pos.Insn().KindAt(self.index)
}

func (self *Use) class() *mir.RegClass {
    return self.kind().Class
}

func (self *Use) isUse() bool {
    return self.kind().Access.IsUse()
}

func (self *Use) isInput() bool {
    return self.kind().Access.IsInput()
}

func (self *Use) isDef() bool {
    return self.kind().Access.IsDef()
}

// rewrite substitutes the assigned hard register into the operand. If the
// lifetime was spilled, reload code is inserted before reads and spill code
// after writes, except when the instruction is itself a copy, in which case
// the copy operand is rewritten to address the slot directly, unless that
// would create a memory-to-memory copy.
func (self *Use) rewrite(p *mir.Program, reg mir.Reg, slot int) {
    ins := self.pos.Insn()
    ins.SetRegAt(self.index, reg)

    /* not spilled, the hard register alone will do */
    if slot == -1 {
        return
    }

    /* spill slot memory operand */
    size := self.class().Size
    mem := mir.SpilledReg(p.SpillSlotOffset(slot))

    /* reload before reads; an early-clobber def is "used" for
     * interference purposes but carries no incoming value */
    if self.isInput() {
        if ins.IsCopy() && !ins.RegAt(0).IsSpilledReg() {
            if self.index != 1 {
                panic("regalloc: copy source operand expected at index 1")
            }
            ins.SetRegAt(1, mem)
        } else {
            self.pos.InsertBefore(mir.NewCopy(reg, mem, size))
        }
    }

    /* spill after writes */
    if self.isDef() {
        if ins.IsCopy() && !ins.RegAt(1).IsSpilledReg() {
            if self.index != 0 {
                panic("regalloc: copy destination operand expected at index 0")
            }
            ins.SetRegAt(0, mem)
        } else {
            self.pos.InsertAfter(mir.NewCopy(mem, reg, size))
        }
    }
}

func (self *Use) String() string {
    return fmt.Sprintf("[%d, %d) %s", self.begin, self.end, self.vreg())
}

// LiveRange is one maximal contiguous interval during which a virtual
// register holds a needed value, with the uses inside it. The range may
// begin before its first use and end after its last use when the register
// is live across block boundaries.
type LiveRange struct {
    begin ProgramPoint
    end   ProgramPoint
    uses  []Use
}

// setBegin retargets an empty range, it must not have any uses yet.
func (self *LiveRange) setBegin(begin ProgramPoint) {
    if self.begin > begin || self.end > begin || len(self.uses) != 0 {
        panic("regalloc: cannot retarget a populated live range")
    }
    self.begin = begin
    self.end = begin
}

func (self *LiveRange) setEnd(end ProgramPoint) {
    if self.end > end {
        panic("regalloc: live range end may only grow")
    }
    self.end = end
}

// appendUse adds a use ordered by begin. Uses may overlap: an instruction
// "FOO use_def, use" applied as "FOO x, x" records the ranges [t, t+2) and
// [t, t+1), both kept so each operand can be rewritten separately.
func (self *LiveRange) appendUse(use Use) {
    if self.begin > use.begin {
        panic("regalloc: use begins before its live range")
    }
    self.uses = append(self.uses, use)
    if self.end < use.end {
        self.end = use.end
    }
}

func (self *LiveRange) String() string {
    buf := []string { fmt.Sprintf("[%d, %d) {", self.begin, self.end) }
    for i := range self.uses {
        buf = append(buf, "  " + self.uses[i].String())
    }
    return strings.Join(append(buf, "}"), "\n")
}

// SplitKind classifies whether a lifetime can release its hard register at
// a given position.
type SplitKind uint8

const (
    // SplitImpossible: a use starts before but ends at or after the
    // position, the register cannot become free there.
    SplitImpossible SplitKind = iota

    // SplitConflict: a use starts exactly at the position, so the tiny
    // lifetime split from it competes with the lifetime being allocated in
    // the very same instruction.
    SplitConflict

    // SplitOK: every remaining use starts strictly after the position.
    SplitOK
)

// SplitPos locates the first use to evict: range index and use index
// within that range. ri == len(ranges) means no use remains past the
// position.
type SplitPos struct {
    ri int
    ui int
}

// Lifetime is the full set of live ranges of one virtual register, with
// the allocation state attached: the register class narrowed over all
// uses, the assigned hard register, the spill slot once spilled, the spill
// weight driving eviction choices, and the move hint link.
type Lifetime struct {
    ranges []LiveRange
    class  *mir.RegClass
    hard   mir.Reg
    slot   int
    weight int
    hint   *Lifetime
}

// newLifetime creates an empty lifetime starting at begin, for live-in
// registers that have no use yet.
func newLifetime(begin ProgramPoint) *Lifetime {
    return &Lifetime {
        ranges: []LiveRange {{ begin: begin, end: begin }},
        slot:   -1,
    }
}

// newTinyLifetime wraps a single evicted use, it inherits the spill slot
// of the lifetime it was split from.
func newTinyLifetime(use Use, slot int) *Lifetime {
    return &Lifetime {
        ranges: []LiveRange {{ begin: use.begin, end: use.end, uses: []Use { use } }},
        class:  use.class(),
        slot:   slot,
        weight: 1,
    }
}

func (self *Lifetime) begin() ProgramPoint {
    if len(self.ranges) == 0 {
        panic("regalloc: empty lifetime")
    }
    return self.ranges[0].begin
}

func (self *Lifetime) end() ProgramPoint {
    if len(self.ranges) == 0 {
        panic("regalloc: empty lifetime")
    }
    return self.ranges[len(self.ranges) - 1].end
}

func (self *Lifetime) setEnd(end ProgramPoint) {
    if len(self.ranges) == 0 {
        panic("regalloc: empty lifetime")
    }
    self.ranges[len(self.ranges) - 1].setEnd(end)
}

func (self *Lifetime) lastRangeBegin() ProgramPoint {
    if len(self.ranges) == 0 {
        panic("regalloc: empty lifetime")
    }
    return self.ranges[len(self.ranges) - 1].begin
}

// startRange opens a new live range after a lifetime hole.
func (self *Lifetime) startRange(begin ProgramPoint) {
    if self.end() > begin {
        panic("regalloc: new live range overlaps the previous one")
    }
    self.ranges = append(self.ranges, LiveRange { begin: begin, end: begin })
}

// appendUse extends the lifetime with one more use. A write-only use after
// a gap opens a lifetime hole, and narrows the register class to the
// intersection with the operand class.
func (self *Lifetime) appendUse(use Use) {
    last := &self.ranges[len(self.ranges) - 1]

    /* a pure def after a gap starts a new range; if the current range is
     * still empty this is a live-in register being overwritten, so the
     * live-in part is dropped instead */
    if use.isDef() && !use.isUse() && self.end() < use.begin {
        if len(last.uses) == 0 {
            last.setBegin(use.begin)
        } else {
            self.ranges = append(self.ranges, LiveRange { begin: use.begin, end: use.begin })
            last = &self.ranges[len(self.ranges) - 1]
        }
    }
    last.appendUse(use)

    /* classes are nested or disjoint, the intersection of classes that
     * share a register is never empty */
    if self.class == nil {
        self.class = use.class()
    } else if self.class = self.class.Intersect(use.class()); self.class == nil {
        panic("regalloc: conflicting register classes for " + use.vreg().String())
    }
    self.weight++
}

// GetClass is the register class every use of this lifetime fits in.
func (self *Lifetime) GetClass() *mir.RegClass {
    if self.class == nil {
        panic("regalloc: lifetime has no register class")
    }
    return self.class
}

// HardReg is the assigned hard register, Noreg until allocated.
func (self *Lifetime) HardReg() mir.Reg {
    return self.hard
}

// SpillSlot is the assigned spill slot, -1 until spilled.
func (self *Lifetime) SpillSlot() int {
    return self.slot
}

func (self *Lifetime) setSpill(slot int) {
    if self.slot != -1 {
        panic("regalloc: lifetime is already spilled")
    }
    self.slot = slot
}

// findMoveHint resolves the move hint chain with path compression. Move
// hints form a disjoint set of copy-connected lifetimes whose
// representative is the one allocated first, so there is no union by rank.
func (self *Lifetime) findMoveHint() *Lifetime {
    if self.hint == nil {
        return self
    }
    self.hint = self.hint.findMoveHint()
    return self.hint
}

// setMoveHint links two copy-connected lifetimes, the one beginning first
// becomes the representative.
func (self *Lifetime) setMoveHint(other *Lifetime) {
    p := self.findMoveHint()
    q := other.findMoveHint()
    if p.begin() > q.begin() {
        p.hint = q
    } else if q != p {
        q.hint = p
    }
}

// TestInterference reports whether two lifetimes are ever live at the same
// time. Both range lists are sorted, so a single two-pointer merge
// suffices.
func (self *Lifetime) TestInterference(other *Lifetime) bool {
    i, j := 0, 0
    for i < len(self.ranges) && j < len(other.ranges) {
        if self.ranges[i].end <= other.ranges[j].begin {
            i++
        } else if other.ranges[j].end <= self.ranges[i].begin {
            j++
        } else {
            return true
        }
    }
    return false
}

// FindSplitPos checks whether this lifetime can release its hard register
// at begin, and locates the first use to evict if it can.
func (self *Lifetime) FindSplitPos(begin ProgramPoint) (SplitKind, SplitPos) {
    for ri := range self.ranges {
        if self.ranges[ri].end <= begin {
            continue
        }
        for ui := range self.ranges[ri].uses {
            use := &self.ranges[ri].uses[ui]

            /* evicted tiny lifetime would end before begin, keep it */
            if use.end <= begin {
                continue
            }

            /* it starts before but ends at or after begin, the hard
             * register cannot become free */
            if use.begin < begin {
                return SplitImpossible, SplitPos{}
            }

            /* starts at or after begin, evict from here on */
            if use.begin == begin {
                return SplitConflict, SplitPos { ri, ui }
            }
            return SplitOK, SplitPos { ri, ui }
        }
    }

    /* the lifetime spans past begin without further uses, which happens
     * with live-out registers */
    return SplitOK, SplitPos { ri: len(self.ranges) }
}

// Split evicts every use from pos on into its own tiny lifetime and
// removes it from this lifetime, so no use is ever rewritten twice. The
// tiny lifetimes inherit the spill slot.
func (self *Lifetime) Split(pos SplitPos) []*Lifetime {
    if pos.ri == len(self.ranges) {
        return nil
    }

    /* one tiny lifetime per evicted use, in program order */
    var out []*Lifetime
    for ri := pos.ri; ri < len(self.ranges); ri++ {
        ui := 0
        if ri == pos.ri {
            ui = pos.ui
        }
        for ; ui < len(self.ranges[ri].uses); ui++ {
            out = append(out, newTinyLifetime(self.ranges[ri].uses[ui], self.slot))
        }
    }

    /* drop the transferred uses */
    if pos.ui == 0 {
        self.ranges = self.ranges[:pos.ri]
    } else {
        self.ranges[pos.ri].uses = self.ranges[pos.ri].uses[:pos.ui]
        self.ranges = self.ranges[:pos.ri + 1]
    }
    return out
}

// Rewrite patches every use with the assigned hard register, inserting
// spill and reload code when the lifetime lives in a spill slot.
func (self *Lifetime) Rewrite(p *mir.Program) {
    for ri := range self.ranges {
        for ui := range self.ranges[ri].uses {
            self.ranges[ri].uses[ui].rewrite(p, self.hard, self.slot)
        }
    }
}

func (self *Lifetime) String() string {
    buf := []string { "lifetime {" }
    for i := range self.ranges {
        buf = append(buf, self.ranges[i].String())
    }
    return strings.Join(append(buf, "}"), "\n")
}
