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

func TestProgram_FrameLayout(t *testing.T) {
    p := NewProgram()
    require.Equal(t, 0, p.FrameSize())

    /* spill slots alone start at the frame base */
    s0 := p.AllocSpill()
    require.Equal(t, 0, s0)
    require.Equal(t, 0, p.SpillSlotOffset(s0))
    require.Equal(t, 16, p.FrameSize())

    /* the arg area sits below the spill slots, reserving it shifts them */
    p.ReserveArgs(24)
    require.Equal(t, 32, p.SpillSlotOffset(s0))
    require.Equal(t, 48, p.FrameSize())

    s1 := p.AllocSpill()
    require.Equal(t, 48, p.SpillSlotOffset(s1))
    require.Equal(t, 64, p.FrameSize())

    /* reservations only ever grow the area */
    p.ReserveArgs(8)
    require.Equal(t, 32, p.SpillSlotOffset(s0))
    p.ReserveArgs(33)
    require.Equal(t, 48, p.SpillSlotOffset(s0))
    require.Equal(t, 80, p.FrameSize())
}
