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

package mir

import (
    `strings`
)

// Program is one compiled code region: a basic block list in layout order
// plus the stack frame bookkeeping.
//
// The stack frame layout is
//
//      [arg slots][spill slots]
//      ^--- stack pointer
//
// Arg slots need a fixed offset from the stack pointer, in particular for
// call arguments passed on the stack. Spill slots hold spilled registers.
// Every slot is 16 bytes and the stack pointer stays 16-byte aligned.
type Program struct {
    Blocks []*BasicBlock
    nvreg  int
    nbb    int
    nargs  int
    nspill int
}

func NewProgram() *Program {
    return new(Program)
}

// NewVReg allocates a fresh virtual register.
func (self *Program) NewVReg() Reg {
    r := Vreg(self.nvreg)
    self.nvreg++
    return r
}

// NumVRegs is the number of virtual registers allocated so far.
func (self *Program) NumVRegs() int {
    return self.nvreg
}

// NewBlock creates an empty basic block and appends it to the layout.
func (self *Program) NewBlock() *BasicBlock {
    bb := &BasicBlock { Id: self.nbb }
    self.nbb++
    self.Blocks = append(self.Blocks, bb)
    return bb
}

// NumBlocks is the number of basic block IDs handed out, IDs are always
// below this value.
func (self *Program) NumBlocks() int {
    return self.nbb
}

// Link records a control-flow edge from src to dst on both blocks.
func (self *Program) Link(src *BasicBlock, dst *BasicBlock) *Edge {
    e := &Edge { Src: src, Dst: dst }
    src.Out = append(src.Out, e)
    dst.In = append(dst.In, e)
    return e
}

// ReserveArgs grows the arg slot area to hold at least size bytes.
func (self *Program) ReserveArgs(size int) {
    if slots := (size + 15) / 16; self.nargs < slots {
        self.nargs = slots
    }
}

// AllocSpill allocates a new spill slot and returns its id.
func (self *Program) AllocSpill() int {
    s := self.nspill
    self.nspill++
    return s
}

// NumSpills is the number of spill slots allocated so far.
func (self *Program) NumSpills() int {
    return self.nspill
}

// SpillSlotOffset maps a spill slot id to its byte offset from the stack
// pointer.
func (self *Program) SpillSlotOffset(slot int) int {
    return 16 * (self.nargs + slot)
}

// FrameSize is the total stack frame size in bytes.
func (self *Program) FrameSize() int {
    return 16 * (self.nargs + self.nspill)
}

// Flatten commits attached spill and reload code in every block.
func (self *Program) Flatten() {
    for _, bb := range self.Blocks {
        bb.Flatten()
    }
}

func (self *Program) String() string {
    buf := make([]string, 0, len(self.Blocks))
    for _, bb := range self.Blocks {
        buf = append(buf, bb.String())
    }
    return strings.Join(buf, "\n")
}
