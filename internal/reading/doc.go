// Package reading defines the distance Reading, its valid range, payload
// parsing, and the proximity classifier used by the display.
//
// A Reading is one timestamped sensor value in centimetres. Values are
// clamped to a configured Range on ingestion rather than rejected, so a
// sensor glitch such as "-5" or "999999" still produces a drawable value.
//
// # Classification
//
//	value < 20        → VeryClose (red)
//	20 ≤ value < 50   → Near      (amber)
//	value ≥ 50        → Far       (green)
//
// Classify is a pure function and safe for concurrent use.
//
// # Usage
//
//	v, err := reading.Parse(payload)
//	if err != nil {
//	    // errors.Is(err, reading.ErrMalformedPayload)
//	}
//	r := reading.New(rng.Clamp(v), time.Now())
//	cat := reading.Classify(r.Value)
//	fmt.Println(cat.Describe(r.Value)) // "Near (37 cm)"
package reading
