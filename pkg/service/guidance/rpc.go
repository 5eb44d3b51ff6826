package guidance

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/safe"
)

// ProtocolVersion is the knowledge-search protocol revision sent on initialize
const ProtocolVersion = "2024-11-05"

const sessionHeader = "Mcp-Session-Id"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      clientInfo     `json:"clientInfo"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// toolResult is the result of tools/call. Content items are usually
// {"type":"text","text":...} but plain strings are accepted as well.
type toolResult struct {
	Content []json.RawMessage `json:"content"`
	IsError bool              `json:"isError,omitempty"`
}

// Text joins all textual content items with a space
func (r *toolResult) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, raw := range r.Content {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		var item struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &item); err == nil && item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, " ")
}

// call sends one JSON-RPC request to {endpoint}/mcp and returns its result
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "rate limiter wait aborted", goerr.V("method", method))
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal request", goerr.V("method", method))
	}

	url := c.endpoint + "/mcp"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V(model.URLKey, url))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if session := c.sessionID(); session != "" {
		req.Header.Set(sessionHeader, session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("method", method))
	}
	defer safe.Drain(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("unexpected status code",
			goerr.V("method", method),
			goerr.V(model.StatusCodeKey, resp.StatusCode))
	}
	if session := resp.Header.Get(sessionHeader); session != "" {
		c.setSessionID(session)
	}

	payload, err := readPayload(resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response", goerr.V("method", method))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(payload, &rpcResp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode response", goerr.V("method", method))
	}
	if rpcResp.Error != nil {
		return nil, goerr.New("RPC error",
			goerr.V("method", method),
			goerr.V("code", rpcResp.Error.Code),
			goerr.V("message", rpcResp.Error.Message))
	}
	if len(rpcResp.Result) == 0 {
		return nil, goerr.New("empty RPC result", goerr.V("method", method))
	}

	return rpcResp.Result, nil
}

// readPayload returns the JSON body, taking the first data event when the
// server answers with an event stream
func readPayload(resp *http.Response) ([]byte, error) {
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return io.ReadAll(resp.Body)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			continue
		}
		if line == "" && len(data) > 0 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read event stream")
	}
	if len(data) == 0 {
		return nil, goerr.New("event stream has no data")
	}
	return []byte(strings.Join(data, "\n")), nil
}
