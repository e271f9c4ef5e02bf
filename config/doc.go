// Package config loads docpage configuration with Viper.
//
// Configuration comes from a YAML, JSON or TOML file and from environment
// variables prefixed with DOCPAGE_, where dots become underscores:
//
//	DOCPAGE_PAGING_PAGE_SIZE=50
//	DOCPAGE_SOURCE_KIND=redis
//	DOCPAGE_DATA_REDIS_ADDR=localhost:6379
//
// Example YAML:
//
//	app_name: docpage
//	logger:
//	  level: 4
//	  format: json
//	paging:
//	  page_size: 20
//	  listen_for_updates: true
//	source:
//	  kind: mongodb
//	  collection: articles
//	  order_by:
//	    field: published_at
//	    descending: true
//	data:
//	  mongodb:
//	    uri: mongodb://localhost:27017
//	    database: docpage
//	breaker:
//	  enabled: true
//	live:
//	  max_workers: 4
//	observes:
//	  tracer:
//	    url: localhost:4317
//
// Every section has defaults, so an empty file (or none) yields a working
// in-memory setup.
//
// # Hot Reload
//
// Watch re-reads the file on change and hands the new configuration to a
// callback; the command line uses it to adjust the log level.
package config
