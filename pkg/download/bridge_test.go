package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	mediaType, data, err := DecodeDataURL("data:text/plain;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
	assert.Equal(t, []byte("hello"), data)

	_, data, err = DecodeDataURL("data:;base64,")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDecodeDataURL_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"text/plain;base64,aGVsbG8=",
		"data:text/plain;base64",
		"data:text/plain,hello",
		"data:text/plain;base64,!!!",
	}

	for _, in := range inputs {
		_, _, err := DecodeDataURL(in)
		assert.ErrorIs(t, err, ErrBadDataURL, "input %q", in)
	}
}

func TestBlobName(t *testing.T) {
	assert.Equal(t, "4f2a-99", blobName("blob:https://example.com/4f2a-99"))
	assert.Equal(t, fallbackName, blobName("blob:https://example.com/"))
	assert.Equal(t, fallbackName, blobName("blob:null"))
}
