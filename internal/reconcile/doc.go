// Package reconcile classifies remote tracks against a local library.
//
// # Tokenizer
//
// [Tokenize] folds case and reduces free text to a [TokenSet] of ASCII alphanumeric words.
// [NormalizeIdentityLink] reduces a track link to a comparable key.
//
// # Local index
//
// [BuildIndex] builds three inverted indices over the local tracks (artist token, title token,
// normalized origin link), each mapping a key to positions in the local slice. Tracks without
// artist or title tokens are left out of the token indices and counted by [Index.Skipped].
//
// # Reconciler
//
// [Reconciler.Reconcile] runs two tiers per remote track:
//  1. identity link lookup, yielding [models.MatchURL]
//  2. artist-token and title-token candidate intersection, yielding [models.MatchTokens]
//
// Remote tracks without artist or title tokens are [models.MatchUnmatchable]; everything else is
// [models.MatchMissing]. Unmatchable and missing tracks form the missing subset, in input order.
package reconcile
