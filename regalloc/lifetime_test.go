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

package regalloc

import (
    `testing`

    `github.com/cloudwego/lir/mir`
    `github.com/stretchr/testify/require`
)

func mklifetime(ranges ...[2]ProgramPoint) *Lifetime {
    lt := new(Lifetime)
    lt.slot = -1
    for _, r := range ranges {
        lt.ranges = append(lt.ranges, LiveRange { begin: r[0], end: r[1] })
    }
    return lt
}

/* mkuse backs the use with a real operand so splitting can read its
 * register class */
func mkuse(begin ProgramPoint, end ProgramPoint) Use {
    bb := new(mir.BasicBlock)
    pos := bb.Append(mir.NewDefine(mir.Vreg(0)))
    return Use { pos: pos, index: 0, begin: begin, end: end }
}

func TestLifetime_Interference(t *testing.T) {
    a := mklifetime([2]ProgramPoint { 0, 4 }, [2]ProgramPoint { 8, 12 })
    b := mklifetime([2]ProgramPoint { 4, 8 })
    c := mklifetime([2]ProgramPoint { 2, 6 })
    d := mklifetime([2]ProgramPoint { 12, 16 })

    /* b fits exactly into the hole of a */
    require.False(t, a.TestInterference(b))
    require.False(t, b.TestInterference(a))

    /* c overlaps both a and b */
    require.True(t, a.TestInterference(c))
    require.True(t, c.TestInterference(a))
    require.True(t, b.TestInterference(c))

    /* ranges touching end-to-begin do not interfere */
    require.False(t, a.TestInterference(d))
    require.False(t, d.TestInterference(a))
}

func TestLifetime_FindSplitPos(t *testing.T) {
    lt := mklifetime()
    lt.ranges = []LiveRange {
        { begin: 0, end: 6, uses: []Use {
            { begin: 1, end: 2 },
            { begin: 4, end: 6 },
        }},
        { begin: 10, end: 13, uses: []Use {
            { begin: 12, end: 13 },
        }},
    }

    /* a use spanning across the position pins the register */
    kind, _ := lt.FindSplitPos(5)
    require.Equal(t, SplitImpossible, kind)

    /* a use starting exactly at the position is a conflict */
    kind, pos := lt.FindSplitPos(4)
    require.Equal(t, SplitConflict, kind)
    require.Equal(t, SplitPos { 0, 1 }, pos)

    /* every remaining use starts strictly later */
    kind, pos = lt.FindSplitPos(2)
    require.Equal(t, SplitOK, kind)
    require.Equal(t, SplitPos { 0, 1 }, pos)
    kind, pos = lt.FindSplitPos(8)
    require.Equal(t, SplitOK, kind)
    require.Equal(t, SplitPos { 1, 0 }, pos)

    /* nothing to evict past the last use */
    kind, pos = lt.FindSplitPos(13)
    require.Equal(t, SplitOK, kind)
    require.Equal(t, 2, pos.ri)
}

func TestLifetime_Split(t *testing.T) {
    lt := mklifetime()
    lt.ranges = []LiveRange {
        { begin: 0, end: 6, uses: []Use {
            mkuse(1, 2),
            mkuse(4, 6),
        }},
        { begin: 10, end: 13, uses: []Use {
            mkuse(10, 11),
            mkuse(12, 13),
        }},
    }
    lt.setSpill(3)

    /* split mid-range, the tail uses move out one by one */
    out := lt.Split(SplitPos { 0, 1 })
    require.Equal(t, 3, len(out))
    require.Equal(t, ProgramPoint(4), out[0].begin())
    require.Equal(t, ProgramPoint(6), out[0].end())
    require.Equal(t, ProgramPoint(10), out[1].begin())
    require.Equal(t, ProgramPoint(12), out[2].begin())

    /* tiny lifetimes inherit the spill slot and weigh one use */
    for _, v := range out {
        require.Equal(t, 3, v.SpillSlot())
        require.Equal(t, 1, v.weight)
    }

    /* the original keeps only the head */
    require.Equal(t, 1, len(lt.ranges))
    require.Equal(t, 1, len(lt.ranges[0].uses))

    /* nothing remains past the end */
    require.Nil(t, lt.Split(SplitPos { ri: 1 }))
}

func TestLifetime_SplitWholeRange(t *testing.T) {
    lt := mklifetime()
    lt.ranges = []LiveRange {
        { begin: 0, end: 2, uses: []Use { mkuse(1, 2) } },
        { begin: 6, end: 9, uses: []Use { mkuse(7, 9) } },
    }
    out := lt.Split(SplitPos { 1, 0 })
    require.Equal(t, 1, len(out))
    require.Equal(t, ProgramPoint(7), out[0].begin())
    require.Equal(t, 1, len(lt.ranges))
    require.Equal(t, ProgramPoint(2), lt.end())
}

func TestLifetime_MoveHints(t *testing.T) {
    a := mklifetime([2]ProgramPoint { 0, 2 })
    b := mklifetime([2]ProgramPoint { 4, 6 })
    c := mklifetime([2]ProgramPoint { 8, 10 })

    /* the earliest lifetime becomes the representative */
    b.setMoveHint(a)
    c.setMoveHint(b)
    require.Equal(t, a, a.findMoveHint())
    require.Equal(t, a, b.findMoveHint())
    require.Equal(t, a, c.findMoveHint())

    /* path compression links c straight to the representative */
    require.Equal(t, a, c.hint)

    /* idempotent unions keep the representative */
    a.setMoveHint(c)
    require.Equal(t, a, c.findMoveHint())
}

func TestLifetime_RangeGrowth(t *testing.T) {
    lt := newLifetime(4)
    require.Equal(t, ProgramPoint(4), lt.begin())
    require.Equal(t, ProgramPoint(4), lt.end())

    /* grow-only endpoints */
    lt.setEnd(10)
    require.Equal(t, ProgramPoint(10), lt.end())
    require.Panics(t, func() { lt.setEnd(8) })

    /* ranges after holes must not overlap */
    lt.startRange(12)
    require.Equal(t, ProgramPoint(12), lt.lastRangeBegin())
    require.Panics(t, func() { lt.startRange(11) })
}
