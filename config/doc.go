// Package config loads the filecrud server configuration with viper and
// validates it with go-playground/validator.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. a .env file in the working directory, which never replaces variables
//     that are already set
//  3. config files, merged left to right (./config.yaml when none is given)
//  4. FILECRUD_* environment variables, where server.port becomes
//     FILECRUD_SERVER_PORT and so on
//  5. command-line flags that were set explicitly
//
// PORT, MONGODB_URI, APP_ENV and NODE_ENV are read when the matching
// FILECRUD_ variable is absent.
//
// A minimal file for a local SQLite setup:
//
//	server:
//	  port: 8080
//	  public_url: http://localhost:8080
//	database:
//	  type: sqlite
//	  dsn: ./filecrud.db
//	storage:
//	  type: filesystem
//	  path: ./data
//
// Load returns the validated Config; WithContext and FromContext carry it
// through cobra commands. DatabaseConfig, BlobStoreConfig, ServiceConfig and
// HandlerConfig translate it into the settings of the packages it drives.
package config
