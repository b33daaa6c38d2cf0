// Package influxdb provides the optional InfluxDB metrics sink for rangeview.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched metric writing and health monitoring.
//
// # Purpose
//
// The sink records how the telemetry link behaves over time:
//
//	rangeview_link    tag state    field backoff_seconds   one point per state change
//	rangeview_ingest  tag outcome  field count=1           one point per received payload
//
// Reading values themselves are never written; the display keeps no history.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.RecordLinkState("backing_off", 10*time.Second, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes; write errors are
// delivered to the SetOnError callback.
package influxdb
