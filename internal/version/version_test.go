package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.Equal(t, "dev (commit: unknown)", Full())
	assert.Equal(t, "dev (commit: unknown, unknown/unknown)", FullWithPlatform())
	assert.Equal(t, "proftimer/dev", UserAgent())
}
