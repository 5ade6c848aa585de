// Package all registers every alias-table storage backend and the SQL Server
// driver the mssql backend needs.
package all

import (
	_ "github.com/microsoft/go-mssqldb"

	_ "champhelper/internal/storage/file"
	_ "champhelper/internal/storage/mssql"
	_ "champhelper/internal/storage/postgres"
	_ "champhelper/internal/storage/sqlite"
)
