package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	info := Get()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Contains(t, info.String(), "dbsimple version 1.2.3")

	pairs := info.Pairs()
	assert.Len(t, pairs, 5)
	assert.Equal(t, [2]string{"Version", "1.2.3"}, pairs[0])
}
