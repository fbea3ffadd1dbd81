// Package extproc hosts the analysis engine in an external process and speaks
// framed JSON-RPC with it over stdio. The process boundary is what lets one
// server drive differently-versioned engine installations side by side.
package extproc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const jsonRPCVersion = "2.0"

// JSON-RPC error codes used on this boundary
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// Responses can be large for reference and diagnostic sweeps over big scopes.
const readBufferSize = 1024 * 1024

// Message is a JSON-RPC 2.0 message in either direction
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// WriteMessage sends msg with Content-Length header framing
func WriteMessage(writer io.Writer, msg *Message) error {
	msg.JSONRPC = jsonRPCVersion
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
	_, err = writer.Write([]byte(content))
	return err
}

// ReadMessage reads one Content-Length framed message. io.EOF is returned
// unwrapped so callers can treat shutdown as a normal end of stream.
func ReadMessage(reader *bufio.Reader) (*Message, error) {
	var contentLength int

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		if value, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			length, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length header %q: %w", line, err)
			}
			contentLength = length
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("malformed message body: %w", err)
	}
	return &msg, nil
}

// newRequest builds a request message with marshaled params
func newRequest(id int64, method string, params interface{}) (*Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Message{ID: &id, Method: method, Params: raw}, nil
}

// newNotification builds a notification message (no ID)
func newNotification(method string, params interface{}) (*Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Message{Method: method, Params: raw}, nil
}

// newResponse builds a success response for a reverse request
func newResponse(id int64, result interface{}) (*Message, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Message{ID: &id, Result: raw}, nil
}

// newErrorResponse builds an error response for a reverse request
func newErrorResponse(id int64, code int, message string) *Message {
	return &Message{ID: &id, Error: &RPCError{Code: code, Message: message}}
}
