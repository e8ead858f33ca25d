package schema

import (
	"github.com/mohae/deepcopy"
)

// ApplyDefaults sets every property default declared in doc on body when body
// is a JSON object that lacks the property. Objects the body already holds
// are filled from their own property schemas; missing objects are not
// created and arrays are never entered. Defaults are deep-copied into the
// body. Applying twice is the same as applying once.
func ApplyDefaults(doc interface{}, body interface{}) {
	object, ok := body.(map[string]interface{})
	if !ok {
		return
	}

	schemaObj, ok := doc.(map[string]interface{})
	if !ok {
		return
	}

	properties, ok := schemaObj["properties"].(map[string]interface{})
	if !ok {
		return
	}

	for name, raw := range properties {
		property, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if value, exists := object[name]; exists {
			ApplyDefaults(property, value)
			continue
		}
		if def, ok := property["default"]; ok {
			object[name] = deepcopy.Copy(def)
		}
	}
}
