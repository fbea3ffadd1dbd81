package extproc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	request, err := newRequest(7, "session/hover", map[string]interface{}{"file": "a.ts", "offset": 12})
	require.NoError(t, err)
	require.NoError(t, WriteMessage(&buf, request))

	msg, err := ReadMessage(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "2.0", msg.JSONRPC)
	assert.Equal(t, int64(7), *msg.ID)
	assert.Equal(t, "session/hover", msg.Method)

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Params, &params))
	assert.Equal(t, "a.ts", params["file"])
}

func TestReadMultipleMessagesFromOneStream(t *testing.T) {
	var buf bytes.Buffer

	first, err := newNotification("session/dispose", map[string]string{"session": "s1"})
	require.NoError(t, err)
	second, err := newResponse(3, "ok")
	require.NoError(t, err)
	require.NoError(t, WriteMessage(&buf, first))
	require.NoError(t, WriteMessage(&buf, second))

	reader := bufio.NewReader(&buf)

	msg, err := ReadMessage(reader)
	require.NoError(t, err)
	assert.Equal(t, "session/dispose", msg.Method)
	assert.Nil(t, msg.ID)

	msg, err = ReadMessage(reader)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *msg.ID)
	assert.Equal(t, `"ok"`, string(msg.Result))

	_, err = ReadMessage(reader)
	assert.Equal(t, io.EOF, err)
}

func TestReadMessageMissingContentLength(t *testing.T) {
	reader := bufio.NewReader(bytes.NewBufferString("X-Other: 1\r\n\r\n{}"))
	_, err := ReadMessage(reader)
	assert.Error(t, err)
}

func TestReadMessageBadContentLength(t *testing.T) {
	reader := bufio.NewReader(bytes.NewBufferString("Content-Length: nope\r\n\r\n{}"))
	_, err := ReadMessage(reader)
	assert.Error(t, err)
}

func TestReadMessageMalformedBody(t *testing.T) {
	reader := bufio.NewReader(bytes.NewBufferString("Content-Length: 3\r\n\r\n{{{"))
	_, err := ReadMessage(reader)
	assert.Error(t, err)
}

func TestErrorResponseCarriesCode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, newErrorResponse(9, MethodNotFound, "unknown method")))

	msg, err := ReadMessage(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.NotNil(t, msg.Error)
	assert.Equal(t, MethodNotFound, msg.Error.Code)
	assert.Contains(t, msg.Error.Error(), "unknown method")
}
