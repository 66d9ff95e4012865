// Package schemas хранит JSON-схемы событий, которые публикует сервис.
package schemas

import "embed"

//go:embed events
var SchemasFS embed.FS
