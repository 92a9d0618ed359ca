// SPDX-License-Identifier: Apache-2.0

package embedcache

import (
	"os"
	"testing"
)

func truncateFile(t *testing.T, path string, size int64) error {
	t.Helper()
	return os.Truncate(path, size)
}
