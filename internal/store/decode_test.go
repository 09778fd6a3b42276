package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ripdb/internal/schema"
)

const invalidText = "caf\xe9 au lait"

func TestDecodePolicy_Text(t *testing.T) {
	tests := []struct {
		policy  DecodePolicy
		in      string
		want    string
		wantErr bool
	}{
		{DecodeIgnore, "plain", "plain", false},
		{DecodeIgnore, invalidText, "caf au lait", false},
		{DecodeReplace, invalidText, "caf\uFFFD au lait", false},
		{DecodeStrict, invalidText, "", true},
		{DecodeStrict, "café", "café", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			got, err := tt.policy.text(tt.in)
			if tt.wantErr {
				var de *DecodeError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, []byte(tt.in), de.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePolicy_LeavesBlobsAlone(t *testing.T) {
	blob := []byte{0xff, 0xfe}
	got, err := DecodeStrict.value(blob)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	got, err = DecodeStrict.value(int64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestParseDecodePolicy(t *testing.T) {
	p, err := ParseDecodePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DecodeIgnore, p)

	p, err = ParseDecodePolicy("STRICT")
	require.NoError(t, err)
	assert.Equal(t, DecodeStrict, p)

	_, err = ParseDecodePolicy("lossy")
	assert.Error(t, err)
}

func TestDecodePolicy_AppliedToReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	w := openTestStore(t, path)
	_, err := w.Insert(ctx, schema.TableSites, "example.com", 1, invalidText)
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.SetConfig(ctx, "label", invalidText))

	ignore := openTestStore(t, path)
	v, err := ignore.SelectOne(ctx, "message", schema.TableSites, "host = ?", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "caf au lait", v)

	replace := openTestStore(t, path, WithDecodePolicy(DecodeReplace))
	rows, err := replace.Select(ctx, "host, message", schema.TableSites, "")
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var host, message string
	require.NoError(t, rows.Scan(&host, &message))
	assert.Equal(t, "caf\uFFFD au lait", message)

	strict := openTestStore(t, path, WithDecodePolicy(DecodeStrict))
	_, err = strict.SelectOne(ctx, "message", schema.TableSites, "host = ?", "example.com")
	var de *DecodeError
	assert.ErrorAs(t, err, &de)

	_, _, err = strict.GetConfig(ctx, "label")
	assert.ErrorAs(t, err, &de)

	label, ok, err := ignore.GetConfig(ctx, "label")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "caf au lait", label)
}
