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

// Reg is a machine instruction operand meaningful for optimizations and
// register allocation. It is a tagged integer encoded as:
//
//      virtual register    : [1024, +inf)
//      hard register       : [1, 1024)
//      invalid / undefined : 0
//      (reserved)          : (-1024, -1]
//      spilled register    : (-inf, -1024]
//
// A spilled register encodes the byte offset of its spill slot from the
// stack pointer.
type Reg int32

const (
    _R_vreg    = 1024
    _R_invalid = 0
    _R_spilled = -1024
)

// Noreg is the invalid register value.
const Noreg Reg = _R_invalid

// Vreg creates a virtual register from a zero-based index.
func Vreg(index int) Reg {
    if index < 0 {
        panic("mir: invalid virtual register index")
    } else {
        return Reg(_R_vreg + index)
    }
}

// SpilledReg creates a spilled register from a byte offset into the stack
// frame spill area.
func SpilledReg(offset int) Reg {
    if offset < 0 {
        panic("mir: invalid spill offset")
    } else {
        return Reg(_R_spilled - offset)
    }
}

func (self Reg) IsHardReg() bool {
    return self > _R_invalid && self < _R_vreg
}

func (self Reg) IsVirtualReg() bool {
    return self >= _R_vreg
}

func (self Reg) IsSpilledReg() bool {
    return self <= _R_spilled
}

// VirtualIndex returns the zero-based index of a virtual register.
func (self Reg) VirtualIndex() int {
    if !self.IsVirtualReg() {
        panic("mir: not a virtual register: " + self.String())
    } else {
        return int(self - _R_vreg)
    }
}

// SpillOffset returns the byte offset encoded in a spilled register.
func (self Reg) SpillOffset() int {
    if !self.IsSpilledReg() {
        panic("mir: not a spilled register: " + self.String())
    } else {
        return int(_R_spilled - self)
    }
}

func (self Reg) String() string {
    switch {
        case self == Noreg        : return "(noreg)"
        case self.IsVirtualReg()  : return fmt.Sprintf("%%%d", self.VirtualIndex())
        case self.IsSpilledReg()  : return fmt.Sprintf("%d(%%rsp)", self.SpillOffset())
        case self.IsHardReg()     : return ArchRegName(self)
        default                   : return fmt.Sprintf("(badreg:%d)", int32(self))
    }
}
