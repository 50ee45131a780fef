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

// RemoveNopCopy removes copies with identical source and destination.
// Register allocation leaves such copies behind when move hints succeed in
// assigning both ends of a copy to the same hard register.
func RemoveNopCopy(p *Program) {
    for _, bb := range p.Blocks {
        ins := bb.Ins[:0]
        for _, v := range bb.Ins {
            if !v.IsCopy() || v.RegAt(0) != v.RegAt(1) {
                ins = append(ins, v)
            }
        }
        bb.Ins = ins
    }
}

// RemoveForwarderBlocks removes blocks that contain nothing but an
// unconditional branch, redirecting jumps and edges to their final
// destinations. The entry block is never removed: it is the region entry,
// removing it could change which block the region starts in.
func RemoveForwarderBlocks(p *Program) {
    fwd := make([]*BasicBlock, p.NumBlocks())

    /* identify forwarder blocks */
    for _, bb := range p.Blocks {
        if len(bb.Ins) == 1 && bb.Ins[0].Opcode() == OpBranch {
            fwd[bb.Id] = bb.Ins[0].Then()
        }
    }

    /* resolve chains of forwarders to their final destination, there must
     * not be a loop made of forwarders only */
    for i, dst := range fwd {
        steps := 0
        for dst != nil && fwd[dst.Id] != nil {
            dst = fwd[dst.Id]
            if steps++; steps >= len(fwd) {
                panic("mir: loop of forwarder blocks")
            }
        }
        fwd[i] = dst
    }

    /* keep the entry block in place */
    fwd[p.Blocks[0].Id] = nil

    /* redirect branch targets and outgoing edges */
    for _, bb := range p.Blocks {
        if fwd[bb.Id] != nil {
            continue
        }
        for _, e := range bb.Out {
            if dst := fwd[e.Dst.Id]; dst != nil {
                detachedge(e, e.Dst)
                e.Dst = dst
                dst.In = append(dst.In, e)
            }
        }
        switch t := bb.Term(); t.Opcode() {
            case OpBranch:
                if dst := fwd[t.Then().Id]; dst != nil {
                    t.SetThen(dst)
                }
            case OpCondBranch:
                if dst := fwd[t.Then().Id]; dst != nil {
                    t.SetThen(dst)
                }
                if dst := fwd[t.Else().Id]; dst != nil {
                    t.SetElse(dst)
                }
        }
    }

    /* drop the forwarders along with their now stale edges */
    blocks := p.Blocks[:0]
    for _, bb := range p.Blocks {
        if fwd[bb.Id] == nil {
            blocks = append(blocks, bb)
        } else {
            for _, e := range bb.Out {
                detachedge(e, e.Dst)
            }
        }
    }
    p.Blocks = blocks
}

func detachedge(e *Edge, bb *BasicBlock) {
    in := bb.In[:0]
    for _, v := range bb.In {
        if v != e {
            in = append(in, v)
        }
    }
    bb.In = in
}
