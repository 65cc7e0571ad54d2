// Package swagger embeds the OpenAPI document for the users REST API.
package swagger

import _ "embed"

// FileName is the name the document is served under.
const FileName = "users.swagger.json"

// Doc is the OpenAPI 2.0 document describing /api/users.
//
//go:embed users.swagger.json
var Doc []byte
