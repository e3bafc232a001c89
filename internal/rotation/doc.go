// Package rotation implements the product-set rotation core.
//
// Ledger holds the cyclic sequence of product sets and the current position.
// Classify and FailureTracker form the error policy deciding retry vs stop.
// Loop owns the run/stop lifecycle and drives one tick at a time: poll the
// session gateway, apply the current set, advance, wait. Manager keys loops
// by account so multiple accounts rotate independently.
package rotation
