// Package gps reads position fixes from a serial GNSS receiver.
//
// Only $GPGGA sentences are decoded. A Decoder validates each line against a
// fixed field grammar and folds it into a State value; a Reader polls a
// Transport with a bounded number of attempts and hands back the first fix.
package gps
