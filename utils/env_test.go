package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# provider keys
RC_TEST_DEEPSEEK="ds-value"
export RC_TEST_OPENAI='oa-value'

RC_TEST_EXISTING=from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("RC_TEST_EXISTING", "from-env")
	t.Setenv("RC_TEST_DEEPSEEK", "")
	os.Unsetenv("RC_TEST_DEEPSEEK")
	t.Setenv("RC_TEST_OPENAI", "")
	os.Unsetenv("RC_TEST_OPENAI")

	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "ds-value", os.Getenv("RC_TEST_DEEPSEEK"))
	assert.Equal(t, "oa-value", os.Getenv("RC_TEST_OPENAI"))
	assert.Equal(t, "from-env", os.Getenv("RC_TEST_EXISTING"))
}

func TestLoadEnvFile_Errors(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0600))
	assert.Error(t, LoadEnvFile(path))
}
