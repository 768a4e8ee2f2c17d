// Package loader finds plugins on a load path and turns them into
// hydra.Plugin values.
//
// A plugin is a directory named after the plugin inside one of the load path
// entries. Its code is either a Go Factory compiled into the binary and
// registered under the plugin name, or a declarative manifest
// (plugin.yaml, plugin.yml or plugin.json) describing heads and tests:
//
//	heads:
//	  - type: static
//	    path: /hello
//	    content: hi
//	tests:
//	  checkout:
//	    instructions: Add two items and pay.
//	    heads:
//	      - type: expr
//	        path: /checkout
//	        assert:
//	          - expr: request.method == "POST"
//	        continue: true
//
// Heads use the formats of heads.Spec.
package loader
