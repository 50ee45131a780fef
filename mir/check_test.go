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

func TestCheck_ValidProgram(t *testing.T) {
    p := NewProgram()
    v0 := p.NewVReg()
    bb0 := p.NewBlock()
    bb1 := p.NewBlock()
    bb2 := p.NewBlock()
    bb0.Append(NewMovImm(v0, 1))
    bb0.Append(NewCondBranch(v0, bb1, bb2))
    bb1.Append(NewBranch(bb2))
    bb2.Append(NewJump(0x1234))
    p.Link(bb0, bb1)
    p.Link(bb0, bb2)
    p.Link(bb1, bb2)
    require.Equal(t, CheckOK, Check(p))
}

func TestCheck_SingleBlock(t *testing.T) {
    p := NewProgram()
    bb := p.NewBlock()
    bb.Append(NewJump(0))
    require.Equal(t, CheckOK, Check(p))
}

func TestCheck_DanglingBlock(t *testing.T) {
    p := NewProgram()
    bb0 := p.NewBlock()
    bb1 := p.NewBlock()
    bb0.Append(NewBranch(bb1))
    bb1.Append(NewJump(0))
    p.Link(bb0, bb1)

    /* a block with no edges at all is unreachable */
    stray := p.NewBlock()
    stray.Append(NewJump(0))
    require.Equal(t, CheckDanglingBlock, Check(p))
}

func TestCheck_DanglingEdge(t *testing.T) {
    p := NewProgram()
    bb0 := p.NewBlock()
    bb1 := p.NewBlock()
    bb0.Append(NewBranch(bb1))
    bb1.Append(NewJump(0))
    p.Link(bb0, bb1)

    /* break the edge symmetry */
    bb1.In = nil
    require.Equal(t, CheckDanglingEdge, Check(p))
}

func TestCheck_BadTerminator(t *testing.T) {
    p := NewProgram()
    v0 := p.NewVReg()

    /* terminator not last */
    p0 := NewProgram()
    b0 := p0.NewBlock()
    b1 := p0.NewBlock()
    b0.Append(NewBranch(b1))
    b0.Append(NewMovImm(v0, 1))
    b1.Append(NewJump(0))
    p0.Link(b0, b1)
    require.Equal(t, CheckBadTerminator, Check(p0))

    /* no terminator at all */
    bb := p.NewBlock()
    bb.Append(NewMovImm(v0, 1))
    require.Equal(t, CheckBadTerminator, Check(p))

    /* branch target without a matching edge */
    p1 := NewProgram()
    c0 := p1.NewBlock()
    c1 := p1.NewBlock()
    c2 := p1.NewBlock()
    c0.Append(NewBranch(c2))
    c1.Append(NewJump(0))
    c2.Append(NewJump(0))
    p1.Link(c0, c1)
    p1.Link(c1, c2)
    require.Equal(t, CheckBadTerminator, Check(p1))
}
