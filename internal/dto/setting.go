package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SettingValue accepts a JSON string or number and keeps its text form.
type SettingValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = SettingValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*v = SettingValue(strconv.FormatInt(i, 10))
		return nil
	}
	*v = SettingValue(n.String())
	return nil
}

// ── setting requests ──

// UpdateSettingRequest single-key update.
type UpdateSettingRequest struct {
	Value SettingValue `json:"value"`
}

// BatchUpdateSettingsRequest multi-key update.
type BatchUpdateSettingsRequest struct {
	Settings map[string]SettingValue `json:"settings" binding:"required"`
}
