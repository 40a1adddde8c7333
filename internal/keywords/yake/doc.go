// Package yake implements unsupervised single-document keyword extraction.
//
// Terms are scored from statistics of the document alone: casing, position
// of first sentences, normalised frequency, spread across sentences and the
// variety of neighbouring words. Lower scores are better. No training
// corpus is needed.
package yake
