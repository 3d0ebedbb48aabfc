// Package ports defines the interfaces that connect the application layer
// (internal/app) to infrastructure adapters (internal/adapters, pkg/upload).
//
//   - [Uploader]: sends one CSV batch and returns its outcome
//   - [StateRepository]: persists shipping statistics
//   - [MeasurementStore]: buffers measurements until they are uploaded
//
// The application layer depends only on these interfaces, so it can be
// tested with in-memory fakes.
package ports
