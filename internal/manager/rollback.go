// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package manager

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type undoFunc func() error

// unwinder accumulates compensating actions during a multi-step
// provision. On failure the pending actions run in reverse order;
// Commit drops them once the whole sequence has succeeded.
type unwinder struct {
	undo      []undoFunc
	committed bool
}

func (u *unwinder) Push(fn undoFunc) {
	u.undo = append(u.undo, fn)
}

func (u *unwinder) Commit() {
	u.committed = true
}

// Finish is meant to be deferred with the operation's named error:
// if the operation failed before Commit, every compensating action
// runs last-to-first and any cleanup errors are attached to it.
func (u *unwinder) Finish(opErr *error) {
	if u.committed || *opErr == nil {
		return
	}

	for i := len(u.undo) - 1; i >= 0; i-- {
		if err := u.undo[i](); err != nil {
			zap.L().Error("rollback step failed", zap.Error(err))
			*opErr = multierr.Append(*opErr, err)
		}
	}
}
