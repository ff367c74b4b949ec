// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit = "abc1234"
	GitDirty = "false"
	if info := Info(); !strings.Contains(info, "(abc1234, ") {
		t.Errorf("Info() = %q", info)
	}
	GitDirty = "true"
	if info := Info(); !strings.Contains(info, "(abc1234-dirty, ") {
		t.Errorf("Info() = %q", info)
	}
}

func TestFprint(t *testing.T) {
	var buffer bytes.Buffer
	Fprint(&buffer, "deserlab")
	output := buffer.String()
	if !strings.HasPrefix(output, "deserlab "+Short()+" ") {
		t.Errorf("output = %q", output)
	}
	if !strings.Contains(output, runtime.Version()) {
		t.Errorf("output lacks Go version: %q", output)
	}
}
