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

func TestReg_Encoding(t *testing.T) {
    require.False(t, Noreg.IsHardReg())
    require.False(t, Noreg.IsVirtualReg())
    require.False(t, Noreg.IsSpilledReg())
    require.True(t, RAX.IsHardReg())
    require.True(t, XMM15.IsHardReg())
    v := Vreg(42)
    require.True(t, v.IsVirtualReg())
    require.False(t, v.IsHardReg())
    require.Equal(t, 42, v.VirtualIndex())
    s := SpilledReg(32)
    require.True(t, s.IsSpilledReg())
    require.False(t, s.IsHardReg())
    require.Equal(t, 32, s.SpillOffset())
    require.Equal(t, 0, SpilledReg(0).SpillOffset())
}

func TestReg_String(t *testing.T) {
    require.Equal(t, "%rax", RAX.String())
    require.Equal(t, "%xmm7", XMM7.String())
    require.Equal(t, "%5", Vreg(5).String())
    require.Equal(t, "48(%rsp)", SpilledReg(48).String())
    require.Equal(t, "(noreg)", Noreg.String())
}

func TestReg_InvalidEncodings(t *testing.T) {
    require.Panics(t, func() { Vreg(-1) })
    require.Panics(t, func() { SpilledReg(-16) })
    require.Panics(t, func() { RAX.VirtualIndex() })
    require.Panics(t, func() { Vreg(0).SpillOffset() })
}
