package firebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientOptionPrefersEncodedJSON(t *testing.T) {
	creds := Credentials{EncodedJSON: "eyJ0eXBlIjoic2VydmljZV9hY2NvdW50In0=", File: "/does/not/matter.json"}
	opt, err := creds.clientOption(zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, opt)
}

func TestClientOptionRejectsBadBase64(t *testing.T) {
	creds := Credentials{EncodedJSON: "%%%not-base64"}
	_, err := creds.clientOption(zap.NewNop())
	assert.Error(t, err)
}

func TestClientOptionFileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serviceAccountKey.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	opt, err := Credentials{File: path}.clientOption(zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, opt)

	opt, err = Credentials{File: filepath.Join(t.TempDir(), "missing.json")}.clientOption(zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, opt)
}
