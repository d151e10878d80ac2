package hueapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"hue-panel/internal/domain/model"
)

// Result is one entry of the bridge's success/error envelope: exactly one of
// Success or Err is set.
type Result struct {
	Success json.RawMessage
	Err     *model.BridgeError
}

type rawResult struct {
	Success json.RawMessage    `json:"success"`
	Error   *model.BridgeError `json:"error"`
}

// DecodeEnvelope inspects a response body for the bridge's envelope, which
// may be a list of {success|error} objects or a single such object. It
// returns the decoded entries and ok=false when the body is not an envelope
// at all (a plain resource object such as a light or a map of lights). List
// items that are not objects are skipped.
func DecodeEnvelope(body []byte) (results []Result, ok bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false
	}

	var raws []rawResult
	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, false
		}
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '{' {
				continue
			}
			var r rawResult
			if err := json.Unmarshal(item, &r); err != nil {
				continue
			}
			raws = append(raws, r)
		}
		if len(raws) == 0 {
			return nil, false
		}
	case '{':
		var r rawResult
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, false
		}
		if r.Error == nil && r.Success == nil {
			return nil, false
		}
		raws = append(raws, r)
	default:
		return nil, false
	}

	results = make([]Result, 0, len(raws))
	for _, r := range raws {
		results = append(results, Result{Success: r.Success, Err: r.Error})
	}
	return results, true
}

// FirstError returns the first error entry, if any.
func FirstError(results []Result) *model.BridgeError {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// checkBody turns an embedded error into a *model.BridgeError before the
// body is decoded any further.
func checkBody(body []byte) error {
	results, ok := DecodeEnvelope(body)
	if !ok {
		return nil
	}
	if be := FirstError(results); be != nil {
		return be
	}
	return nil
}

// username pulls the generated credential out of a pairing response.
func username(results []Result) (string, error) {
	for _, r := range results {
		if r.Success == nil {
			continue
		}
		var s struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(r.Success, &s); err == nil && s.Username != "" {
			return s.Username, nil
		}
	}
	return "", fmt.Errorf("%w: no username in pairing response", ErrUnexpectedResponse)
}
