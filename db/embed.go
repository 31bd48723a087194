// Package db embeds the SQL schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for the catalog, account, and like tables plus the
// geospatial and trigram indexes.
//
//go:embed migrations/001_schema.sql
var Schema string
