package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ivyharness/internal/roles"
)

// base returns layers that satisfy every required key.
func base() []Layer {
	return []Layer{
		{"service_name": "ivy_client", "timeout_cmd": "timeout 120 "},
		{"target": "picoquic_server"},
		{"test_name": "quic_server_test_stream"},
	}
}

func TestAssemble_LaterLayersWin(t *testing.T) {
	layers := append(base(), Layer{"timeout": 10}, Layer{}, Layer{"timeout": 20}, Layer{})
	set, err := Assemble(roles.Client, layers...)
	require.NoError(t, err)
	assert.Equal(t, "20", set["timeout"])
}

func TestAssemble_MissingRequiredKeyFails(t *testing.T) {
	layers := []Layer{
		{"service_name": "ivy_client", "timeout_cmd": "timeout 120 "},
		{"target": "picoquic_server"},
	}
	_, err := Assemble(roles.Client, layers...)
	require.Error(t, err)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "test_name", cerr.Key)

	// Adding the key in any layer makes assembly succeed.
	layers = append(layers, Layer{"test_name": "quic_client_test_max"})
	_, err = Assemble(roles.Client, layers...)
	assert.NoError(t, err)
}

func TestAssemble_SentinelValuesFail(t *testing.T) {
	for _, bad := range []any{"", "None", "null", "undefined", nil} {
		layers := append(base(), Layer{"test_name": bad})
		_, err := Assemble(roles.Client, layers...)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr, "sentinel %v should fail assembly", bad)
		assert.Equal(t, "test_name", cerr.Key)
	}
}

func TestAssemble_NestedValueObjectsUnwrapped(t *testing.T) {
	layers := append(base(),
		Layer{"initial_version": map[string]any{"value": "29", "description": "QUIC draft"}},
		Layer{"alpn": map[any]any{"value": "hq-29"}},
	)
	set, err := Assemble(roles.Client, layers...)
	require.NoError(t, err)
	assert.Equal(t, "29", set["initial_version"])
	assert.Equal(t, "hq-29", set["alpn"])
}

func TestAssemble_AddressesAreSymbolic(t *testing.T) {
	set, err := Assemble(roles.Client, base()...)
	require.NoError(t, err)
	// Client opposes the server: the server address resolves at the target.
	assert.Equal(t, "target_resolved_address", set["server_addr"])
	assert.Equal(t, "local_resolved_address", set["client_addr"])

	set, err = Assemble(roles.Server, base()...)
	require.NoError(t, err)
	assert.Equal(t, "local_resolved_address", set["server_addr"])
	assert.Equal(t, "target_resolved_address", set["client_addr"])
}

func TestAssemble_RoleAlwaysSet(t *testing.T) {
	set, err := Assemble(roles.Server, base()...)
	require.NoError(t, err)
	assert.Equal(t, "server", set["role"])
}

func TestNormalize_Scalars(t *testing.T) {
	layers := append(base(), Layer{"iters": 300, "keep_alive": true, "ratio": 1.5})
	set, err := Assemble(roles.Client, layers...)
	require.NoError(t, err)
	assert.Equal(t, "300", set["iters"])
	assert.Equal(t, "true", set["keep_alive"])
	assert.Equal(t, "1.5", set["ratio"])
}

func TestTimeoutCommand(t *testing.T) {
	assert.Equal(t, "timeout 120 ", TimeoutCommand(120))
}
