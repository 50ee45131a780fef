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

// CheckStatus is the result of the structural IR validation.
type CheckStatus uint8

const (
    CheckOK CheckStatus = iota
    CheckDanglingEdge
    CheckDanglingBlock
    CheckBadTerminator
)

func (self CheckStatus) String() string {
    switch self {
        case CheckOK            : return "ok"
        case CheckDanglingEdge  : return "dangling edge"
        case CheckDanglingBlock : return "dangling basic block"
        case CheckBadTerminator : return "bad terminator"
        default                 : return "unknown"
    }
}

func edgein(e *Edge, edges []*Edge) bool {
    for _, v := range edges {
        if v == e {
            return true
        }
    }
    return false
}

func blockin(bb *BasicBlock, blocks []*BasicBlock) bool {
    for _, v := range blocks {
        if v == bb {
            return true
        }
    }
    return false
}

func checkedges(p *Program, bb *BasicBlock) CheckStatus {
    if len(bb.In) == 0 && len(bb.Out) == 0 && len(p.Blocks) != 1 {
        return CheckDanglingBlock
    }

    /* edges must link back to this block */
    for _, e := range bb.In {
        if e.Dst != bb {
            return CheckDanglingEdge
        }
    }
    for _, e := range bb.Out {
        if e.Src != bb {
            return CheckDanglingEdge
        }
    }

    /* peer blocks must mirror every edge and belong to the program */
    for _, e := range bb.Out {
        if !edgein(e, e.Dst.In) {
            return CheckDanglingEdge
        }
        if !blockin(e.Dst, p.Blocks) {
            return CheckDanglingBlock
        }
    }
    for _, e := range bb.In {
        if !edgein(e, e.Src.Out) {
            return CheckDanglingEdge
        }
        if !blockin(e.Src, p.Blocks) {
            return CheckDanglingBlock
        }
    }
    return CheckOK
}

func issuccessor(bb *BasicBlock, dst *BasicBlock) bool {
    for _, e := range bb.Out {
        if e.Dst == dst {
            return true
        }
    }
    return false
}

func checkterm(bb *BasicBlock) CheckStatus {
    for i, p := range bb.Ins {
        if !p.IsTerminator() {
            continue
        }

        /* control transfer must come last */
        if i != len(bb.Ins) - 1 {
            return CheckBadTerminator
        }

        /* targets must be recorded as successors */
        switch p.Opcode() {
            case OpJump:
                return CheckOK
            case OpBranch:
                if issuccessor(bb, p.Then()) {
                    return CheckOK
                }
                return CheckBadTerminator
            case OpCondBranch:
                if issuccessor(bb, p.Then()) && issuccessor(bb, p.Else()) {
                    return CheckOK
                }
                return CheckBadTerminator
        }
    }
    return CheckBadTerminator
}

// Check validates the structure of the program: edge symmetry, block
// membership, and that every block ends with a well-formed terminator.
// It is run before register allocation, and the allocator output is
// expected to pass it as well.
func Check(p *Program) CheckStatus {
    for _, bb := range p.Blocks {
        if st := checkedges(p, bb); st != CheckOK {
            return st
        }
        if st := checkterm(bb); st != CheckOK {
            return st
        }
    }
    return CheckOK
}
