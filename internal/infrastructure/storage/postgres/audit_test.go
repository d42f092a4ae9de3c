package postgres

import (
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditLog(t *testing.T) *AuditLog {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	return &AuditLog{encoder: enc, decoder: dec, compressThreshold: 64}
}

func TestAuditLog_SmallPayloadStoredPlain(t *testing.T) {
	s := newTestAuditLog(t)
	payload := []byte(`{"quantity":{"old":1,"new":2}}`)

	plain, compressed, algo := s.encode(payload)

	assert.Equal(t, CompressionNone, algo)
	assert.Nil(t, compressed)
	assert.Equal(t, payload, plain)
}

func TestAuditLog_LargePayloadRoundTrip(t *testing.T) {
	s := newTestAuditLog(t)
	payload := []byte(`{"note":"` + strings.Repeat("restock ", 100) + `"}`)

	plain, compressed, algo := s.encode(payload)
	require.Equal(t, CompressionZstd, algo)
	assert.Nil(t, plain)
	assert.Less(t, len(compressed), len(payload))

	out, err := s.decode(plain, compressed, algo)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(out))
}
