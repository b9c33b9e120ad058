// Package config provides configuration parsing for nextroute projects.
//
// The configuration is stored in nextroute.json at the project root. A
// missing file is not an error; every field has a working default.
//
// # Configuration File Structure
//
//	{
//	  "paths": {
//	    "build": ".next",
//	    "output": ".nextroute/output",
//	    "static": "public"
//	  },
//	  "dev": {
//	    "port": 3999,
//	    "host": "localhost",
//	    "hotReload": true
//	  },
//	  "offload": {
//	    "enabled": true,
//	    "bucket": "static-assets",
//	    "region": "us-east-1",
//	    "endpoint": "http://localhost:9000",
//	    "usePathStyle": true
//	  },
//	  "telemetry": {
//	    "metrics": true,
//	    "tracing": false
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Build dir:", cfg.BuildDir())
package config
