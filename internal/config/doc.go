// Package config loads weave configuration.
//
// Configuration lives in weave.json or weave.yaml at the project root.
// Missing fields take defaults; Validate reports bad values as E006.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "runtime": {
//	    "flushMode": "async",
//	    "maxFlushPasses": 100,
//	    "poolSize": 4096
//	  },
//	  "server": {
//	    "address": ":8080",
//	    "sendBuffer": 64,
//	    "historySize": 100,
//	    "writeTimeout": "10s",
//	    "pingInterval": "30s"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "telemetry": {
//	    "namespace": "weave",
//	    "metrics": true,
//	    "tracing": false
//	  }
//	}
//
// The YAML form uses the same keys.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rt := reactive.New(cfg.RuntimeOptions(logger)...)
package config
