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

type Opcode uint8

const (
    OpNop Opcode = iota
    OpCopy
    OpDefine
    OpBranch
    OpCondBranch
    OpJump
    OpMovImm
    OpAdd
    OpSub
    OpNeg
    OpShl
    OpCmp
    OpMulx
    OpLoad
    OpStore
)

type InsnKind uint8

const (
    // InsnDefault has no special meaning for optimizations.
    InsnDefault InsnKind = iota

    // InsnSideEffects is never treated as dead.
    InsnSideEffects

    // InsnCopy is a register-to-register copy, it can be deleted when both
    // operands coincide, and its operands may be rewritten to address spill
    // slots directly.
    InsnCopy
)

// Insn is one machine instruction. Operand registers are mutable, operand
// kinds are shared static tables. Spill and reload code inserted during
// register allocation is attached to the instruction itself, so positions
// recorded into the instruction stream stay valid.
type Insn struct {
    op    Opcode
    kind  InsnKind
    size  int
    imm   int64
    kinds []RegKind
    regs  []Reg
    then  *BasicBlock
    other *BasicBlock
    pre   []*Insn
    post  []*Insn
}

// NewInsn creates an instruction with an explicit operand layout. The kind
// table is aliased, not copied, callers are expected to share static tables.
func NewInsn(op Opcode, kind InsnKind, size int, kinds []RegKind, regs ...Reg) *Insn {
    if len(kinds) != len(regs) {
        panic("mir: operand kind and register count mismatch")
    } else {
        return &Insn { op: op, kind: kind, size: size, kinds: kinds, regs: regs }
    }
}

func (self *Insn) Opcode() Opcode    { return self.op }
func (self *Insn) ValueSize() int    { return self.size }
func (self *Insn) NumRegs() int      { return len(self.regs) }
func (self *Insn) IsCopy() bool      { return self.kind == InsnCopy }
func (self *Insn) HasSideEffects() bool { return self.kind == InsnSideEffects }

func (self *Insn) RegAt(i int) Reg {
    return self.regs[i]
}

func (self *Insn) SetRegAt(i int, r Reg) {
    self.regs[i] = r
}

func (self *Insn) KindAt(i int) RegKind {
    return self.kinds[i]
}

// Then is the taken target of a branch terminator.
func (self *Insn) Then() *BasicBlock { return self.then }

// Else is the fall-through target of a conditional branch terminator.
func (self *Insn) Else() *BasicBlock { return self.other }

func (self *Insn) SetThen(bb *BasicBlock) { self.then = bb }
func (self *Insn) SetElse(bb *BasicBlock) { self.other = bb }

// IsTerminator checks for control transfer instructions, which must come
// last in their basic block.
func (self *Insn) IsTerminator() bool {
    switch self.op {
        case OpBranch     : fallthrough
        case OpCondBranch : fallthrough
        case OpJump       : return true
        default           : return false
    }
}

/* operand kind tables for the pseudo instructions */
var (
    _K_copy   = []RegKind { { GenericRegs, Def }, { GenericRegs, Use } }
    _K_copyx  = []RegKind { { VectorRegs, Def }, { VectorRegs, Use } }
    _K_define = []RegKind { { GenericRegs, Def } }
    _K_branch = []RegKind { { GenericRegs, Use } }
)

// NewCopy creates a copy of the value of the given size between registers
// or memory. ATTENTION: the operand register class is selected by size.
func NewCopy(dst Reg, src Reg, size int) *Insn {
    switch size {
        case 1, 2, 4, 8 : return NewInsn(OpCopy, InsnCopy, size, _K_copy, dst, src)
        case 16         : return NewInsn(OpCopy, InsnCopy, size, _K_copyx, dst, src)
        default         : panic(fmt.Sprintf("mir: invalid copy size: %d", size))
    }
}

// NewDefine marks dst as defined without emitting anything, it only keeps
// the data-flow integral for instructions with implicit outputs.
func NewDefine(dst Reg) *Insn {
    return NewInsn(OpDefine, InsnDefault, 8, _K_define, dst)
}

// NewBranch creates an unconditional branch to then.
func NewBranch(then *BasicBlock) *Insn {
    p := NewInsn(OpBranch, InsnSideEffects, 0, nil)
    p.then = then
    return p
}

// NewCondBranch branches to then when src is non-zero, to otherwise
// when it is zero.
func NewCondBranch(src Reg, then *BasicBlock, otherwise *BasicBlock) *Insn {
    p := NewInsn(OpCondBranch, InsnSideEffects, 8, _K_branch, src)
    p.then = then
    p.other = otherwise
    return p
}

// NewJump creates a region exit to an external target address.
func NewJump(target uint64) *Insn {
    p := NewInsn(OpJump, InsnSideEffects, 0, nil)
    p.imm = int64(target)
    return p
}

func (self *Insn) String() string {
    switch self.op {
        case OpNop        : return "nop"
        case OpCopy       : return fmt.Sprintf("copy.%d %s, %s", self.size, self.regs[1], self.regs[0])
        case OpDefine     : return fmt.Sprintf("define %s", self.regs[0])
        case OpBranch     : return fmt.Sprintf("jmp bb_%d", self.then.Id)
        case OpCondBranch : return fmt.Sprintf("jnz %s, bb_%d, bb_%d", self.regs[0], self.then.Id, self.other.Id)
        case OpJump       : return fmt.Sprintf("jump *%#x", uint64(self.imm))
        case OpMovImm     : return fmt.Sprintf("movq $%d, %s", self.imm, self.regs[0])
        case OpAdd        : return fmt.Sprintf("addq %s, %s", self.regs[1], self.regs[0])
        case OpSub        : return fmt.Sprintf("subq %s, %s", self.regs[1], self.regs[0])
        case OpNeg        : return fmt.Sprintf("negq %s", self.regs[0])
        case OpShl        : return fmt.Sprintf("shlq %s, %s", self.regs[1], self.regs[0])
        case OpCmp        : return fmt.Sprintf("cmpq %s, %s", self.regs[1], self.regs[0])
        case OpMulx       : return fmt.Sprintf("mulx %s, %s, %s", self.regs[2], self.regs[1], self.regs[0])
        case OpLoad       : return fmt.Sprintf("movq (%s), %s", self.regs[1], self.regs[0])
        case OpStore      : return fmt.Sprintf("movq %s, (%s)", self.regs[0], self.regs[1])
        default           : return fmt.Sprintf("op_%d", self.op)
    }
}
