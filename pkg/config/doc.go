// Package config provides the hydra server configuration.
//
// A configuration file is YAML (.yaml, .yml) or JSON (anything else):
//
//	port: 3000
//	pluginLoadPath:
//	  - ./plugins
//	plugins:
//	  - logger
//	  - name: shop
//	    config:
//	      currency: EUR
//	log:
//	  level: debug
//
// Environment variables override file values; see ApplyEnv.
package config
