// Package html converts rendered web pages into markdown-flavoured text.
// It drops non-content markup (scripts, styles, the document head, inline
// SVG and comments) and keeps headings, paragraphs, lists, quotes and
// preformatted blocks so downstream keyword extraction sees page structure.
package html
