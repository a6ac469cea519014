package plain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type custom struct {
	val string
}

func (c *custom) Unmarshal(bs []byte) error {
	c.val = string(bs)
	return nil
}

func (c custom) String() string {
	return c.val
}

func TestPlainEncoder(t *testing.T) {
	enc := NewEncoder()

	bs, err := enc.Marshal("take with food")
	require.NoError(t, err)
	assert.Equal(t, "take with food", string(bs))

	bs, err = enc.Marshal([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(bs))

	s := "pointer text"
	bs, err = enc.Marshal(&s)
	require.NoError(t, err)
	assert.Equal(t, "pointer text", string(bs))

	bs, err = enc.Marshal(custom{val: "stringer"})
	require.NoError(t, err)
	assert.Equal(t, "stringer", string(bs))

	// structured values fall back to JSON
	bs, err = enc.Marshal(map[string]string{"advice": "rest"})
	require.NoError(t, err)
	assert.Equal(t, `{"advice":"rest"}`, string(bs))

	var out string
	require.NoError(t, enc.Unmarshal([]byte("hello"), &out))
	assert.Equal(t, "hello", out)

	var raw []byte
	require.NoError(t, enc.Unmarshal([]byte("hello"), &raw))
	assert.Equal(t, "hello", string(raw))

	var c custom
	require.NoError(t, enc.Unmarshal([]byte("delegated"), &c))
	assert.Equal(t, "delegated", c.val)

	var m map[string]string
	require.NoError(t, enc.Unmarshal([]byte(`{"advice":"rest"}`), &m))
	assert.Equal(t, "rest", m["advice"])

	require.NoError(t, enc.Validate("anything"))
	assert.Empty(t, enc.GetFormatInstructions())
}
