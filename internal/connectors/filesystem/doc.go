// Package filesystem turns saved HTML files into pages and watches a
// directory for new ones.
//
// A page's URL is recovered from the "saved from url" marker browsers write
// into saved pages, then from a canonical link, and otherwise falls back to
// the file:// URL of the file.
package filesystem
