// Package log is the logging abstraction shared by towership packages.
//
// Components accept a Logger and attach typed fields to each message.
// A zerolog-backed implementation is provided for the CLI and a no-op
// implementation for tests and embedders that bring no logger:
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//	logger.Info("batch uploaded", log.String("outcome", "Success"), log.Int("rows", 42))
//
// Any other logging library can be plugged in by implementing Logger.
package log
