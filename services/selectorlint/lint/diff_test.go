// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sourcegraph/go-diff/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return lines
}

func TestUnifiedDiff_Equal(t *testing.T) {
	out, err := UnifiedDiff("a.rb", []byte("x\n"), []byte("x\n"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnifiedDiff_SingleHunk(t *testing.T) {
	before := "page.find('.a').find('.b')\nclick_on 'x'\n"
	after := "page.find('.a .b')\nclick_on 'x'\n"

	out, err := UnifiedDiff("spec/a_spec.rb", []byte(before), []byte(after))
	require.NoError(t, err)

	want := "--- a/spec/a_spec.rb\n" +
		"+++ b/spec/a_spec.rb\n" +
		"@@ -1,2 +1,2 @@\n" +
		"-page.find('.a').find('.b')\n" +
		"+page.find('.a .b')\n" +
		" click_on 'x'\n"
	assert.Equal(t, want, string(out))
}

func TestUnifiedDiff_ParsesBack(t *testing.T) {
	lines := numbered(20)
	before := strings.Join(lines, "\n") + "\n"
	lines[1] = "changed 2"
	lines[17] = "changed 18"
	after := strings.Join(lines, "\n") + "\n"

	out, err := UnifiedDiff("a.rb", []byte(before), []byte(after))
	require.NoError(t, err)

	fd, err := diff.ParseFileDiff(out)
	require.NoError(t, err)
	assert.Equal(t, "a/a.rb", fd.OrigName)
	assert.Equal(t, "b/a.rb", fd.NewName)
	require.Len(t, fd.Hunks, 2)

	assert.Equal(t, int32(1), fd.Hunks[0].OrigStartLine)
	assert.Equal(t, int32(5), fd.Hunks[0].OrigLines)
	assert.Equal(t, int32(15), fd.Hunks[1].OrigStartLine)
	assert.Equal(t, int32(6), fd.Hunks[1].OrigLines)
	assert.Equal(t, int32(6), fd.Hunks[1].NewLines)
}

func TestUnifiedDiff_MergesCloseChanges(t *testing.T) {
	lines := numbered(12)
	before := strings.Join(lines, "\n") + "\n"
	lines[2] = "x"
	lines[8] = "y"
	after := strings.Join(lines, "\n") + "\n"

	out, err := UnifiedDiff("a.rb", []byte(before), []byte(after))
	require.NoError(t, err)

	fd, err := diff.ParseFileDiff(out)
	require.NoError(t, err)
	require.Len(t, fd.Hunks, 1)
	assert.Equal(t, int32(1), fd.Hunks[0].OrigStartLine)
	assert.Equal(t, int32(12), fd.Hunks[0].OrigLines)
}

func TestUnifiedDiff_NoTrailingNewline(t *testing.T) {
	out, err := UnifiedDiff("a.rb", []byte("a\nb"), []byte("a\nc"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "-b\n\\ No newline at end of file\n+c\n\\ No newline at end of file\n")
}
