// Package loader turns an authored CUE bundle into a runnable world and
// trigger set.
//
// Authors reference entities by symbol; the loader resolves every symbol to
// its stable id and validates each cross-reference against the declared
// entities. A dangling reference in a bundle is a load failure, not a
// runtime surprise: sessions only ever start from a fully resolved world.
//
// Player-visible text is NFC-normalized on the way in so transcripts compare
// byte-for-byte regardless of how the author's editor encoded accents.
package loader
