package types

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// StringList decodes a JSONB column holding a list of strings.
// Malformed or empty values decode to nil.
func StringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// StringSet decodes a JSONB string list into a membership set.
func StringSet(raw datatypes.JSON) map[string]bool {
	list := StringList(raw)
	if len(list) == 0 {
		return nil
	}
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}
