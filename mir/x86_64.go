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

    `github.com/chenzhuoyu/iasm/x86_64`
)

/* x86-64 general purpose hard registers */
const (
    RAX Reg = iota + 1
    RCX
    RDX
    RBX
    RSP
    RBP
    RSI
    RDI
    R8
    R9
    R10
    R11
    R12
    R13
    R14
    R15
)

/* x86-64 vector hard registers */
const (
    XMM0 Reg = iota + 17
    XMM1
    XMM2
    XMM3
    XMM4
    XMM5
    XMM6
    XMM7
    XMM8
    XMM9
    XMM10
    XMM11
    XMM12
    XMM13
    XMM14
    XMM15
)

// ArchRegs maps general purpose hard registers to their assembler
// counterparts.
var ArchRegs = map[Reg]x86_64.Register64 {
    RAX : x86_64.RAX,
    RCX : x86_64.RCX,
    RDX : x86_64.RDX,
    RBX : x86_64.RBX,
    RSP : x86_64.RSP,
    RBP : x86_64.RBP,
    RSI : x86_64.RSI,
    RDI : x86_64.RDI,
    R8  : x86_64.R8,
    R9  : x86_64.R9,
    R10 : x86_64.R10,
    R11 : x86_64.R11,
    R12 : x86_64.R12,
    R13 : x86_64.R13,
    R14 : x86_64.R14,
    R15 : x86_64.R15,
}

var archRegNames = map[Reg]string {
    RAX : "%rax",
    RCX : "%rcx",
    RDX : "%rdx",
    RBX : "%rbx",
    RSP : "%rsp",
    RBP : "%rbp",
    RSI : "%rsi",
    RDI : "%rdi",
    R8  : "%r8",
    R9  : "%r9",
    R10 : "%r10",
    R11 : "%r11",
    R12 : "%r12",
    R13 : "%r13",
    R14 : "%r14",
    R15 : "%r15",
}

// ArchRegName is the assembler name of a hard register.
func ArchRegName(r Reg) string {
    if r >= XMM0 && r <= XMM15 {
        return fmt.Sprintf("%%xmm%d", r - XMM0)
    } else if n, ok := archRegNames[r]; ok {
        return n
    } else {
        return fmt.Sprintf("hreg(%d)", int32(r))
    }
}

// GenericRegs is the allocatable general purpose class. RSP and RBP are
// reserved for the stack frame, caller-saved registers come first.
var GenericRegs = NewRegClass(
    "generic", 8,
    RAX, RCX, RDX, RSI, RDI,
    R8, R9, R10, R11,
    RBX, R12, R13, R14, R15,
)

// ShiftRegs holds the shift count for variable shifts, it is nested
// inside GenericRegs.
var ShiftRegs = NewRegClass("shift", 8, RCX)

// VectorRegs is the 16-byte vector class, disjoint from the general
// purpose classes.
var VectorRegs = NewRegClass(
    "vector", 16,
    XMM0, XMM1, XMM2, XMM3, XMM4, XMM5, XMM6, XMM7,
    XMM8, XMM9, XMM10, XMM11, XMM12, XMM13, XMM14, XMM15,
)

/* operand kind tables for the x86-64 instructions */
var (
    _K_movimm = []RegKind { { GenericRegs, Def } }
    _K_binary = []RegKind { { GenericRegs, UseDef }, { GenericRegs, Use } }
    _K_unary  = []RegKind { { GenericRegs, UseDef } }
    _K_shift  = []RegKind { { GenericRegs, UseDef }, { ShiftRegs, Use } }
    _K_cmp    = []RegKind { { GenericRegs, Use }, { GenericRegs, Use } }
    _K_mulx   = []RegKind { { GenericRegs, Def }, { GenericRegs, DefEarlyClobber }, { GenericRegs, Use } }
    _K_load   = []RegKind { { GenericRegs, Def }, { GenericRegs, Use } }
    _K_store  = []RegKind { { GenericRegs, Use }, { GenericRegs, Use } }
)

// NewMovImm loads the immediate v into dst.
func NewMovImm(dst Reg, v int64) *Insn {
    p := NewInsn(OpMovImm, InsnDefault, 8, _K_movimm, dst)
    p.imm = v
    return p
}

// NewAdd computes dst += src.
func NewAdd(dst Reg, src Reg) *Insn {
    return NewInsn(OpAdd, InsnDefault, 8, _K_binary, dst, src)
}

// NewSub computes dst -= src.
func NewSub(dst Reg, src Reg) *Insn {
    return NewInsn(OpSub, InsnDefault, 8, _K_binary, dst, src)
}

// NewNeg computes dst = -dst.
func NewNeg(dst Reg) *Insn {
    return NewInsn(OpNeg, InsnDefault, 8, _K_unary, dst)
}

// NewShl computes dst <<= cnt, the count register must come from
// ShiftRegs.
func NewShl(dst Reg, cnt Reg) *Insn {
    return NewInsn(OpShl, InsnDefault, 8, _K_shift, dst, cnt)
}

// NewCmp compares a with b for its side effect on the flags.
func NewCmp(a Reg, b Reg) *Insn {
    return NewInsn(OpCmp, InsnSideEffects, 8, _K_cmp, a, b)
}

// NewMulx computes the 128-bit product of src, placing the high half into
// hi and the low half into lo. The low half is written before src is fully
// consumed.
func NewMulx(hi Reg, lo Reg, src Reg) *Insn {
    return NewInsn(OpMulx, InsnDefault, 8, _K_mulx, hi, lo, src)
}

// NewLoad loads a 64-bit value at (base) into dst.
func NewLoad(dst Reg, base Reg) *Insn {
    return NewInsn(OpLoad, InsnDefault, 8, _K_load, dst, base)
}

// NewStore stores the 64-bit src at (base).
func NewStore(src Reg, base Reg) *Insn {
    return NewInsn(OpStore, InsnSideEffects, 8, _K_store, src, base)
}
