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
    `strings`
)

// Edge is one control-flow edge between two basic blocks.
type Edge struct {
    Src *BasicBlock
    Dst *BasicBlock
}

// BasicBlock is a straight-line instruction sequence ended by a terminator.
// LiveIn and LiveOut are the virtual registers live across the block
// boundaries, they are computed by the liveness analyzer before register
// allocation starts.
type BasicBlock struct {
    Id      int
    Ins     []*Insn
    In      []*Edge
    Out     []*Edge
    LiveIn  []Reg
    LiveOut []Reg
}

// Append adds p at the end of the block and returns its stable position.
func (self *BasicBlock) Append(p *Insn) Pos {
    self.Ins = append(self.Ins, p)
    return Pos { self, len(self.Ins) - 1 }
}

// PosAt returns the stable position of slot i.
func (self *BasicBlock) PosAt(i int) Pos {
    return Pos { self, i }
}

// Term is the block terminator, which is always the last instruction.
func (self *BasicBlock) Term() *Insn {
    if n := len(self.Ins); n == 0 {
        return nil
    } else {
        return self.Ins[n - 1]
    }
}

// Successors lists the target blocks of the terminator.
func (self *BasicBlock) Successors() []*BasicBlock {
    switch p := self.Term(); {
        case p == nil               : return nil
        case p.Opcode() == OpBranch : return []*BasicBlock { p.then }
        case p.Opcode() == OpCondBranch : return []*BasicBlock { p.then, p.other }
        default                     : return nil
    }
}

// Flatten commits all attached spill and reload code into the instruction
// slice. Outstanding positions must not be used afterwards.
func (self *BasicBlock) Flatten() {
    n := len(self.Ins)

    /* nothing to commit for most blocks */
    for _, p := range self.Ins {
        n += len(p.pre) + len(p.post)
    }
    if n == len(self.Ins) {
        return
    }

    /* expand every slot in order */
    ins := make([]*Insn, 0, n)
    for _, p := range self.Ins {
        ins = append(ins, p.pre...)
        ins = append(ins, p)
        ins = append(ins, p.post...)
        p.pre, p.post = nil, nil
    }
    self.Ins = ins
}

func (self *BasicBlock) String() string {
    buf := []string { fmt.Sprintf("bb_%d:", self.Id) }

    /* live-in set, if any */
    if len(self.LiveIn) != 0 {
        buf = append(buf, fmt.Sprintf("    # live-in = {%s}", regsrepr(self.LiveIn)))
    }

    /* instructions with their attached spill code */
    for _, p := range self.Ins {
        for _, v := range p.pre {
            buf = append(buf, "    " + v.String())
        }
        buf = append(buf, "    " + p.String())
        for _, v := range p.post {
            buf = append(buf, "    " + v.String())
        }
    }

    /* live-out set, if any */
    if len(self.LiveOut) != 0 {
        buf = append(buf, fmt.Sprintf("    # live-out = {%s}", regsrepr(self.LiveOut)))
    }
    return strings.Join(buf, "\n")
}

func regsrepr(regs []Reg) string {
    buf := make([]string, 0, len(regs))
    for _, r := range regs {
        buf = append(buf, r.String())
    }
    return strings.Join(buf, ", ")
}
