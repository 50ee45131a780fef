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
    `fmt`
)

// Pos is a stable handle to one instruction slot of a basic block. Spill
// and reload code is attached to the slot rather than spliced into the
// instruction slice, so outstanding positions never shift.
type Pos struct {
    B *BasicBlock
    I int
}

func (self Pos) Insn() *Insn {
    return self.B.Ins[self.I]
}

// InsertBefore schedules p immediately before this slot, after previously
// inserted instructions.
func (self Pos) InsertBefore(p *Insn) {
    ins := self.Insn()
    ins.pre = append(ins.pre, p)
}

// InsertAfter schedules p immediately after this slot, after previously
// inserted instructions.
func (self Pos) InsertAfter(p *Insn) {
    ins := self.Insn()
    ins.post = append(ins.post, p)
}

func (self Pos) String() string {
    return fmt.Sprintf("bb_%d.ins[%d]", self.B.Id, self.I)
}
