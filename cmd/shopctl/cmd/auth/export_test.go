package auth

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectShell(t *testing.T) {
	assert.Equal(t, "posix", detectShell(""))
	assert.Equal(t, "posix", detectShell("/bin/zsh"))
	assert.Equal(t, "fish", detectShell("/usr/local/bin/fish"))
	assert.Equal(t, "powershell", detectShell("/usr/bin/pwsh"))
}

func TestWriteExport(t *testing.T) {
	vars := map[string]string{envAccessToken: "abc", envServerURL: "http://localhost:8080"}

	tests := []struct {
		format string
		want   string
	}{
		{"posix", "export SHOPCTL_ACCESS_TOKEN=\"abc\"\nexport SHOPCTL_SERVER_URL=\"http://localhost:8080\"\n"},
		{"fish", "set -x SHOPCTL_ACCESS_TOKEN \"abc\"\nset -x SHOPCTL_SERVER_URL \"http://localhost:8080\"\n"},
		{"pwsh", "$env:SHOPCTL_ACCESS_TOKEN=\"abc\"\n$env:SHOPCTL_SERVER_URL=\"http://localhost:8080\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeExport(&buf, tt.format, vars))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	err := writeExport(&bytes.Buffer{}, "tcsh", vars)
	assert.ErrorContains(t, err, "unsupported shell format")
}
