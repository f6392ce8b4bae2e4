// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

func main() {
	Execute()
}
