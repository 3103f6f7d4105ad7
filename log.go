package coco2yolo

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may be replaced by
// SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf logs skipped inputs, such as a missing annotation document. SetLogger does not affect it.
var Warnf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	Logf = orNop(f)
}

// SetWarnLogger replaces the warning logger. Passing nil mutes it.
func SetWarnLogger(f func(format string, v ...interface{})) {
	Warnf = orNop(f)
}

func orNop(f func(format string, v ...interface{})) func(format string, v ...interface{}) {
	if f == nil {
		return func(string, ...interface{}) {}
	}
	return f
}
