// Package domain contains the core entities of towership.
//
// It has no dependencies on infrastructure (HTTP, files, databases,
// logging).
//
// # Entities
//
//   - [Measurement]: one cell observation with position and signal
//   - [State]: shipping statistics persisted between runs
//
// Measurements travel to the collection service as CSV; see [EncodeCSV]
// and [DecodeCSV].
package domain
