// Package config provides settings loading and rush option files for the
// blitz command line.
//
// Settings come from flags, BLITZ_* environment variables and an optional
// config file, in that order of precedence:
//
//	v, err := config.NewViper("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings, err := config.LoadSettings(v)
//
// Rush option files are YAML or JSON documents with the keys of the rush
// API:
//
//	url: http://example.com
//	region: california
//	pattern:
//	  intervals:
//	    - start: 1
//	      end: 250
//	      duration: 60
package config
