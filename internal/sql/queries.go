package sql

import (
	"embed"
)

// Migrations holds the schema files applied by db.ApplyMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/insert_run.sql
var InsertRun string

//go:embed queries/finish_run.sql
var FinishRun string

//go:embed queries/delete_row_results.sql
var DeleteRowResults string

//go:embed queries/runs_by_sha.sql
var RunsBySHA string

//go:embed queries/failed_rows.sql
var FailedRows string
