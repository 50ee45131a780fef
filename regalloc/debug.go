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
    `fmt`
    `os`

    `github.com/cloudwego/lir/internal/opts`
    `github.com/davecgh/go-spew/spew`
)

func debugLifetimes(lts []*Lifetime) {
    if opts.DebugRegAlloc {
        fmt.Fprintf(os.Stderr, "=== lifetimes ===\n")
        for _, lt := range lts {
            fmt.Fprintln(os.Stderr, lt.String())
        }
    }
}

func debugAllocation(lts []*Lifetime) {
    if opts.DebugRegAlloc {
        spew.Config.SortKeys = true
        spew.Config.DisablePointerMethods = true
        fmt.Fprintf(os.Stderr, "=== allocation ===\n")
        for _, lt := range lts {
            fmt.Fprintf(os.Stderr, "%s slot=%d\n", lt.hard, lt.slot)
            spew.Fdump(os.Stderr, lt.ranges)
        }
    }
}
