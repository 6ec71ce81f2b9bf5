// Package command turns typed calls into request bytes and device replies back
// into typed results.
//
// An exchange is strictly request then reply on one stream:
//
//	request: [code: N bytes][args: Size bytes]          host -> device
//	reply:   [status: M bytes][return: Size bytes]      device -> host
//
// The return payload is present only when the status is the enum's ok member.
// A non-ok status is a normal outcome (Result.IsErr), not a Go error; Go errors
// are reserved for encoding failures, I/O failures and protocol violations.
package command
