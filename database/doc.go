// Package database connects the resource metadata store.
//
// # Supported Backends
//
//   - MongoDB: documents keyed by ObjectID, using the official driver
//   - PostgreSQL: pgx connection pool, UUID identifiers
//   - SQLite: pure-Go driver, suitable for development and single-node use
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{
//	    Type:       "mongo",
//	    DSN:        "mongodb://localhost:27017",
//	    Name:       "filecrud",
//	    Collection: "resources",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	repo := db.GetRepo()
//
// Every backend lists resources newest first and breaks ties by insertion
// order. Identifiers that cannot belong to the backend (a malformed ObjectID
// or UUID) are reported as filecrud.ErrNotFound.
package database
