// Package shop decides which shop a ramen photo was taken at.
//
// The Fuser reads the photo's text and GPS coordinate concurrently. With a
// coordinate it ranks nearby candidates into four tiers:
//
//	1. within 50 m, ramen shop
//	2. within 50 m, other restaurant
//	3. beyond 50 m, ramen shop
//	4. beyond 50 m, other restaurant
//
// and picks the nearest member of the first non-empty tier among 1 to 3.
// Proximity beats category: a restaurant at the table next door outranks a
// ramen shop two kilometres away. When only tier 4 is populated the caller
// must ask the user.
//
// Without a coordinate the recognized text is scanned for ramen keywords.
package shop
