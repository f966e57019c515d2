package file

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDigest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "feed.json", []byte(`{"CVE_Items": []}`), 0644))

	digest, err := Digest(fs, "feed.json")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.NoError(t, ValidateDigest(fs, "feed.json", digest))
	assert.ErrorContains(t, ValidateDigest(fs, "feed.json", "deadbeef"), "digest mismatch")

	_, err = Digest(fs, "missing.json")
	assert.Error(t, err)
}
