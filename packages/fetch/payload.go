package fetch

import "encoding/json"

// Payload is a request body in one of the two supported encodings. Use JSON
// or Binary to construct one.
type Payload interface {
	encode() (body []byte, contentType string, err error)
}

// JSON declares a request body that is marshaled to JSON text and sent with
// Content-Type: application/json.
func JSON(v any) Payload {
	return jsonPayload{value: v}
}

// Binary declares a raw request body sent byte-for-byte with
// Content-Type: application/octet-stream.
func Binary(data []byte) Payload {
	return binaryPayload{data: data}
}

type jsonPayload struct {
	value any
}

func (p jsonPayload) encode() ([]byte, string, error) {
	body, err := json.Marshal(p.value)
	if err != nil {
		return nil, "", err
	}
	return body, ContentTypeJSON, nil
}

type binaryPayload struct {
	data []byte
}

func (p binaryPayload) encode() ([]byte, string, error) {
	return p.data, ContentTypeBinary, nil
}
