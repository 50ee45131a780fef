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

// MaxHardRegs bounds the hard register numbering, it must not exceed the
// width of the RegClass masks.
const MaxHardRegs = 64

// RegClass is a set of hard registers of one kind and size, ordered by
// allocation preference. Distinct classes are either nested or disjoint,
// they never overlap partially.
type RegClass struct {
    Name string
    Size int
    Mask uint64
    Regs []Reg
}

// NewRegClass creates a register class over the given hard registers, which
// are listed in allocation preference order.
func NewRegClass(name string, size int, regs ...Reg) *RegClass {
    mask := uint64(0)

    /* add every register to the mask */
    for _, r := range regs {
        if !r.IsHardReg() || int(r) >= MaxHardRegs {
            panic("mir: invalid hard register for class " + name + ": " + r.String())
        } else {
            mask |= uint64(1) << uint(r)
        }
    }

    /* construct the class */
    return &RegClass {
        Name: name,
        Size: size,
        Mask: mask,
        Regs: regs,
    }
}

func (self *RegClass) Has(r Reg) bool {
    return r > 0 && int(r) < MaxHardRegs && self.Mask & (uint64(1) << uint(r)) != 0
}

func (self *RegClass) IsSubsetOf(other *RegClass) bool {
    return self.Mask & other.Mask == self.Mask
}

// Intersect returns the smaller of two nested classes, or nil if the
// classes only overlap partially.
func (self *RegClass) Intersect(other *RegClass) *RegClass {
    if mask := self.Mask & other.Mask; mask == self.Mask {
        return self
    } else if mask == other.Mask {
        return other
    } else {
        return nil
    }
}

func (self *RegClass) String() string {
    return self.Name
}

const (
    _A_used = 1 << iota
    _A_defined
    _A_input
)

// Access describes how an instruction accesses one register operand.
type Access uint8

const (
    // Use reads the operand, the register must contain a valid value.
    Use Access = _A_used | _A_input

    // Def writes the operand.
    Def Access = _A_defined

    // UseDef reads then writes the operand.
    UseDef Access = Use | Def

    // DefEarlyClobber writes the operand before all inputs are consumed,
    // the register is used and defined but carries no incoming value.
    DefEarlyClobber Access = _A_used | _A_defined
)

func (self Access) IsUse() bool   { return self & _A_used != 0 }
func (self Access) IsDef() bool   { return self & _A_defined != 0 }
func (self Access) IsInput() bool { return self & _A_input != 0 }

// RegKind describes one register operand slot of an instruction: its
// register class and its access pattern.
type RegKind struct {
    Class  *RegClass
    Access Access
}
