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
    `testing`

    `github.com/stretchr/testify/require`
)

func TestRegClass_Membership(t *testing.T) {
    require.True(t, GenericRegs.Has(RAX))
    require.True(t, GenericRegs.Has(R15))
    require.False(t, GenericRegs.Has(RSP))
    require.False(t, GenericRegs.Has(RBP))
    require.False(t, GenericRegs.Has(XMM0))
    require.False(t, GenericRegs.Has(Noreg))
    require.True(t, ShiftRegs.Has(RCX))
    require.False(t, ShiftRegs.Has(RAX))
}

func TestRegClass_Nesting(t *testing.T) {
    require.True(t, ShiftRegs.IsSubsetOf(GenericRegs))
    require.False(t, GenericRegs.IsSubsetOf(ShiftRegs))
    require.True(t, GenericRegs.IsSubsetOf(GenericRegs))
    require.False(t, VectorRegs.IsSubsetOf(GenericRegs))
}

func TestRegClass_Intersect(t *testing.T) {
    require.Equal(t, ShiftRegs, GenericRegs.Intersect(ShiftRegs))
    require.Equal(t, ShiftRegs, ShiftRegs.Intersect(GenericRegs))
    require.Equal(t, GenericRegs, GenericRegs.Intersect(GenericRegs))

    /* disjoint classes have an empty intersection, which is fine because
     * no register is in both */
    require.Nil(t, GenericRegs.Intersect(VectorRegs))

    /* partially overlapping classes are rejected */
    a := NewRegClass("a", 8, RAX, RCX)
    b := NewRegClass("b", 8, RCX, RDX)
    require.Nil(t, a.Intersect(b))
}

func TestRegClass_BadHardReg(t *testing.T) {
    require.Panics(t, func() { NewRegClass("bad", 8, Vreg(0)) })
    require.Panics(t, func() { NewRegClass("bad", 8, Noreg) })
}

func TestAccess_Bits(t *testing.T) {
    require.True(t, Use.IsUse())
    require.False(t, Use.IsDef())
    require.True(t, Use.IsInput())
    require.False(t, Def.IsUse())
    require.True(t, Def.IsDef())
    require.False(t, Def.IsInput())
    require.True(t, UseDef.IsUse())
    require.True(t, UseDef.IsDef())
    require.True(t, UseDef.IsInput())

    /* an early-clobber def interferes with the inputs of its instruction
     * but consumes no value itself */
    require.True(t, DefEarlyClobber.IsUse())
    require.True(t, DefEarlyClobber.IsDef())
    require.False(t, DefEarlyClobber.IsInput())
}
