// Package config loads escat configuration.
//
// Values are resolved in order: built-in defaults (NewDefault), an optional
// YAML file (LoadFromFile), ESCAT_* environment variables (LoadFromEnv) and
// finally command-line flags applied by cmd/escat. Validate must be called
// once all sources have been applied.
//
// Example file:
//
//	connection:
//	  url: https://es.example.com:9200
//	  auth:
//	    type: api_key
//	    api_key_id: VuaCfGcBCdbkQm-e5aOx
//	    api_key: ui2lp2axTNmsyakw9tvNnw
//	  ssl_verify: true
//	  timeout: 30s
//	  requests_per_second: 20
//	extraction:
//	  connection_qualified_name: default/elasticsearch/1700000000
//	  output_path: ./output
//	  owner: search-team
//	  tags: [prod, search]
//	logging:
//	  level: info
//	  format: json
//	metrics:
//	  listen: ":9102"
//	publish:
//	  bucket: metadata-drops
//	  prefix: elasticsearch
//	  region: us-east-1
package config
