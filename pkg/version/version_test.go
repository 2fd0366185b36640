package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, v, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := version, gitCommit, buildDate
	version, gitCommit, buildDate = v, commit, date
	t.Cleanup(func() { version, gitCommit, buildDate = oldV, oldC, oldD })
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())

	withBuildInfo(t, "1.2.3", "abc1234", "2026-10-19")
	assert.Equal(t, "1.2.3", GetVersion())
	assert.Equal(t, "abc1234", GetGitCommit())
	assert.Equal(t, "2026-10-19", GetBuildDate())
	assert.Equal(t, "1.2.3 (abc1234, 2026-10-19)", String())
}
