package dto

import "encoding/json"

// DefaultSource is used when a stream request has no "source" key.
const DefaultSource = "webcam"

// StreamRequest is the body of POST /stream.
type StreamRequest struct {
	Image  string `json:"image"`
	Source string `json:"source"`
}

// UnmarshalJSON fills Source with DefaultSource only when the key is absent
// or null. An explicit empty string is kept as an empty source tag.
func (r *StreamRequest) UnmarshalJSON(data []byte) error {
	type alias StreamRequest
	aux := struct {
		Source *string `json:"source"`
		*alias
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Source = DefaultSource
	if aux.Source != nil {
		r.Source = *aux.Source
	}
	return nil
}
