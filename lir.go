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

// Package lir lowers a virtual register machine IR onto a fixed set of
// hard registers. The input is a basic block list with explicit control
// flow edges, the output is the same IR with every virtual register
// replaced by a hard register or spill slot reference, and with the
// necessary spill and reload copies inserted.
package lir

import (
    `fmt`

    `github.com/cloudwego/lir/internal/opts`
    `github.com/cloudwego/lir/liveness`
    `github.com/cloudwego/lir/mir`
    `github.com/cloudwego/lir/regalloc`
)

// Allocate runs the whole lowering pipeline in place: liveness analysis,
// linear scan register allocation, and copy cleanup. It fails only on
// structurally invalid input IR; everything past validation either
// completes or panics on a compiler internal inconsistency.
func Allocate(p *mir.Program) error {
    if st := mir.Check(p); st != mir.CheckOK {
        return fmt.Errorf("lir: invalid IR: %s", st)
    }

    /* liveness must complete before lifetime analysis starts */
    liveness.Apply(p)
    regalloc.AllocRegs(p)
    mir.RemoveNopCopy(p)

    /* the allocator output must still be structurally valid */
    if opts.DebugCheckIR {
        if st := mir.Check(p); st != mir.CheckOK {
            panic("lir: register allocation corrupted the IR: " + st.String())
        }
    }
    return nil
}
