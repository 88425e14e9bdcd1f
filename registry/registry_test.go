package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresEndpoints(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoints cannot be empty")
}

func TestNewClientFromEnv_UnsetIsNotAnError(t *testing.T) {
	t.Setenv("BRIDGE_REGISTRY_ENDPOINTS", "")

	client, err := NewClientFromEnv()
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestLensInfo_JSONRoundTrip(t *testing.T) {
	info := LensInfo{
		Kind:       KindLens,
		Name:       "text",
		Version:    "1.2.0",
		InstanceID: "i-1",
		Endpoint:   "localhost:7001",
		Metadata:   map[string]string{"flavors": "ir,facts"},
		StartedAt:  time.Now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var back LensInfo
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, info, back)
}

func TestNewTLSInfo(t *testing.T) {
	t.Run("disabled returns nil", func(t *testing.T) {
		info, err := newTLSInfo(&TLSConfig{Enabled: false})
		assert.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("missing cert file", func(t *testing.T) {
		_, err := newTLSInfo(&TLSConfig{Enabled: true, KeyFile: "k", CAFile: "ca"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cert file")
	})

	t.Run("missing key file", func(t *testing.T) {
		_, err := newTLSInfo(&TLSConfig{Enabled: true, CertFile: "c", CAFile: "ca"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key file")
	})

	t.Run("missing CA file", func(t *testing.T) {
		_, err := newTLSInfo(&TLSConfig{Enabled: true, CertFile: "c", KeyFile: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CA file")
	})

	t.Run("complete", func(t *testing.T) {
		info, err := newTLSInfo(&TLSConfig{Enabled: true, CertFile: "c", KeyFile: "k", CAFile: "ca"})
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "c", info.CertFile)
	})
}

func TestTLSInfo_NilClientConfig(t *testing.T) {
	var info *tlsInfo
	cfg, err := info.ClientConfig()
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}
