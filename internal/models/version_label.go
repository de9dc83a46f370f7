package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// VersionLabel names a document version. The API assigns incrementing integers,
// but labels from other backends may be any string, e.g. "1.2.0".
type VersionLabel string

// LabelFromInt formats an allocated label number.
func LabelFromInt(n int) VersionLabel {
	return VersionLabel(strconv.Itoa(n))
}

// Int returns the numeric value of an incrementing label.
func (l VersionLabel) Int() (int, bool) {
	n, err := strconv.Atoi(string(l))
	return n, err == nil
}

func (l VersionLabel) String() string {
	return string(l)
}

// UnmarshalJSON accepts a JSON string or a JSON number.
func (l *VersionLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = VersionLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("version label must be a string or number: %w", err)
	}
	*l = VersionLabel(n.String())
	return nil
}

// Scan reads the integer label column.
func (l *VersionLabel) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = ""
	case int64:
		*l = VersionLabel(strconv.FormatInt(v, 10))
	case int:
		*l = LabelFromInt(v)
	case []byte:
		*l = VersionLabel(v)
	case string:
		*l = VersionLabel(v)
	default:
		return fmt.Errorf("unsupported version label type %T", src)
	}
	return nil
}
