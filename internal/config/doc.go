// Package config loads the unit-converter configuration file (config.yaml).
//
// Top-level types:
//   - Config{Table, Resolver, Log, Server}: full config tree parsed from YAML
//   - TableConfig: path, strict, match_distance, watch
//   - ResolverConfig: max_distance for fuzzy query tokens
//   - LogConfig: level (debug|info|warn|error), format (json|text)
//   - ServerConfig: http_port, auth; AuthConfig.Key() resolves the API key
//     from the environment variable named by key_env
//
// Load(path) reads the YAML file, applies defaults (table.txt, distance 2,
// info/json logging, port 8080), then validates required fields and enums.
// Default() returns the same defaults for runs without a config file.
package config
