// Package config provides configuration parsing for inkpad.
//
// The configuration is stored in inkpad.json:
//
//	{
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 7340,
//	    "shutdownTimeout": "30s"
//	  },
//	  "store": {
//	    "kind": "s3",
//	    "bucket": "drawings",
//	    "prefix": "inkpad/",
//	    "region": "eu-west-1"
//	  },
//	  "locale": "de",
//	  "document": "default",
//	  "logLevel": "info"
//	}
//
// Missing fields take their defaults; Load validates the result.
package config
