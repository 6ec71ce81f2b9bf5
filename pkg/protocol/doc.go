// Package protocol holds the command catalogue of one device link.
//
// A Protocol goes through two phases. During setup, commands are registered
// with Add or AddCached; each gets the next sequential code, starting at 0 and
// encoded at the configured code width. Begin then consumes the device's
// startup frame and switches the protocol to active, after which handles may
// exchange commands and no further registration is accepted.
//
// Host and device must register the same commands in the same order; nothing
// on the wire checks this. catalog.Catalog.Fingerprint helps compare the two
// ends out of band.
//
// Exchanges are synchronous and not locked: one request is outstanding at a
// time, and callers sharing a Protocol across goroutines must serialize their
// calls.
package protocol
