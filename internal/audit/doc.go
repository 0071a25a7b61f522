// Package audit partitions catalog entries into native and licensed
// placement and ranks licensed entries by how long ago their streaming data
// was verified.
//
// A studio is native when the studio tables map it to a subscription
// service; everything else, "unknown" included, is licensed. Entries with a
// missing or malformed check date report UnknownAge, which sorts ahead of
// every real age.
package audit
