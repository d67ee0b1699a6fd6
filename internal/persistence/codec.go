package persistence

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"

	"github.com/petrijr/botflow/pkg/api"
)

func init() {
	// Steps commonly return maps and slices; register them so outputs
	// survive the interface round-trip. Custom types are the caller's
	// responsibility.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// stepRecord is the storable form of an api.StepResult. Errors travel as
// strings; outputs are gob payloads. Custom output types must be
// registered with encoding/gob by the caller.
type stepRecord struct {
	Step     string
	Status   string
	Error    string
	Duration time.Duration
	Attempts int
	Output   []byte
}

// EncodeResults serializes a result sequence with encoding/gob.
func EncodeResults(results []api.StepResult) ([]byte, error) {
	recs := make([]stepRecord, 0, len(results))
	for _, r := range results {
		out, err := encodeValue(r.Output)
		if err != nil {
			return nil, err
		}
		errStr := ""
		if r.Err != nil {
			errStr = r.Err.Error()
		}
		recs = append(recs, stepRecord{
			Step:     r.Step,
			Status:   string(r.Status),
			Error:    errStr,
			Duration: r.Duration,
			Attempts: r.Attempts,
			Output:   out,
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeResults is the inverse of EncodeResults. Decoded errors are plain
// errors carrying the original message, not the original error value.
func DecodeResults(data []byte) ([]api.StepResult, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var recs []stepRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&recs); err != nil {
		return nil, err
	}

	results := make([]api.StepResult, 0, len(recs))
	for _, rec := range recs {
		out, err := decodeValue(rec.Output)
		if err != nil {
			return nil, err
		}
		var stepErr error
		if rec.Error != "" {
			stepErr = errors.New(rec.Error)
		}
		results = append(results, api.StepResult{
			Step:     rec.Step,
			Status:   api.StepStatus(rec.Status),
			Err:      stepErr,
			Duration: rec.Duration,
			Attempts: rec.Attempts,
			Output:   out,
		})
	}
	return results, nil
}

// encodeValue serializes an arbitrary step output. The value is encoded as
// interface{} so it can be decoded back into interface{} without knowing
// the concrete type at the call site.
func encodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	iv := v
	if err := gob.NewEncoder(&buf).Encode(&iv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var iv any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&iv); err != nil {
		return nil, err
	}
	return iv, nil
}
