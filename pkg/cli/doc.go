// Package cli implements the hydra command line.
//
//	hydra serve      start the server and load the configured plugins
//	hydra validate   check a configuration and its plugins without serving
//	hydra plugins    list the plugins found on the load path
//	hydra version    print build information
package cli
