// Package normalisers provides text steps that turn page markup into
// plain or lightly structured text ahead of keyword extraction and
// embedding.
package normalisers
