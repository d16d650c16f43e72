// Package schemas embeds the JSON Schemas of persisted artifacts.
package schemas

import _ "embed"

// AppState is the JSON Schema of the session snapshot.
//
//go:embed app_state.schema.json
var AppState []byte
