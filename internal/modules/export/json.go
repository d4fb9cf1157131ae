package export

import (
	"encoding/json"
	"io"
)

// WriteJSON writes any calculation result as indented JSON, matching the
// wire shape of the calculate endpoint.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
