// Package all wires every built-in storage backend into the storage factory.
//
// It exists for side effects only: a blank import runs each backend's init,
// which registers its factory, DDL dialect and provisioner. After
//
//	import _ "tosql/internal/storage/all"
//
// the kinds "postgres", "mssql", "mysql" and "sqlite" resolve through
// storage.New, storage.RenderCreateTable and storage.Provision.
//
// A binary that needs fewer backends can import the backend packages it
// wants directly instead.
package all

import (
	_ "tosql/internal/storage/mssql"
	_ "tosql/internal/storage/mysql"
	_ "tosql/internal/storage/postgres"
	_ "tosql/internal/storage/sqlite"
)
