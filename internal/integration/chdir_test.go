package integration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdir switches into dir for the duration of the test, restoring the
// previous working directory on cleanup (stand-in for t.Chdir on Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
