package report

import (
	"encoding/json"
	"reflect"
)

// assign copies a loader or cache value into dest. Values of dest's own type
// are copied directly; anything else round-trips through JSON, which is how
// cached entries come back.
func assign(val interface{}, dest interface{}) error {
	dv := reflect.ValueOf(dest)
	if val != nil {
		vv := reflect.ValueOf(val)
		if vv.Type() == dv.Type() {
			dv.Elem().Set(vv.Elem())
			return nil
		}
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
