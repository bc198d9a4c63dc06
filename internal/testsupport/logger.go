// Package testsupport holds shared helpers for package tests.
package testsupport

// NopLogger discards everything. It satisfies logger.Interface.
type NopLogger struct{}

func (NopLogger) Debug(message interface{}, args ...interface{}) {}
func (NopLogger) Info(message string, args ...interface{})       {}
func (NopLogger) Warn(message string, args ...interface{})       {}
func (NopLogger) Error(message interface{}, args ...interface{}) {}
func (NopLogger) Fatal(message interface{}, args ...interface{}) {}
