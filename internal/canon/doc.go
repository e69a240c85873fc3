// Package canon produces canonical JSON (RFC 8785 subset) and
// domain-separated SHA-256 fingerprints for deployment records.
//
// Only strings, int64 values and objects are accepted; every field the
// fingerprints cover has one of those shapes.
// Floats and null are rejected so that fingerprints never depend on
// number formatting.
package canon
