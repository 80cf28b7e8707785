// Package config provides configuration management for the Company Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file in the working directory.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, startup reconciliation)
//   - Backend: portal base URL, session cookie and request pacing
//   - Reconcile: page sizes, probe bounds and keywords of the company loader
//   - Database: MySQL or SQLite connection details for the catalogue
//   - Storage: S3/MinIO credentials and snapshot bucket settings
//   - Log: Logging level and format
//
// Every key maps to an upper-case environment variable with dots replaced
// by underscores, e.g. reconcile.page_size is RECONCILE_PAGE_SIZE.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Backend.BaseURL)
package config
