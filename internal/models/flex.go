package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Flex is a float64 that tolerates sloppy upstream JSON. Provider records
// carry numbers, quoted numbers, null, or omit a field entirely; anything
// that does not parse as a number decodes to 0 instead of failing the record.
type Flex float64

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = Flex(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = Flex(v)
	return nil
}

func (f Flex) Float64() float64 { return float64(f) }
