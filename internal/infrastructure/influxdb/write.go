package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the sink.
const (
	MeasurementLink   = "rangeview_link"
	MeasurementIngest = "rangeview_ingest"
)

// RecordLinkState writes one connection-state transition.
//
// Example line: rangeview_link,state=backing_off backoff_seconds=10
func (c *Client) RecordLinkState(state string, backoff time.Duration, at time.Time) {
	c.WritePointWithTime(MeasurementLink,
		map[string]string{"state": state},
		map[string]interface{}{"backoff_seconds": backoff.Seconds()},
		at,
	)
}

// RecordIngest writes the outcome of one received payload
// (accepted, malformed or gated).
func (c *Client) RecordIngest(outcome string, at time.Time) {
	c.WritePointWithTime(MeasurementIngest,
		map[string]string{"outcome": outcome},
		map[string]interface{}{"count": 1},
		at,
	)
}

// WritePointWithTime queues one point. It is dropped once the Client is
// closed.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
