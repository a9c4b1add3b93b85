// Package views turns backend queries into live, typed collections for the
// dashboard and CLI: the news feed, trust metrics, leaderboard, rumors and
// the signed-in user.
//
// Every view follows the same life cycle. Start performs the initial fetch
// in the background and opens any realtime subscription; Snapshot returns
// the current {Data, Loading, Error}; Done is closed once the initial fetch
// has settled; Close releases the subscription and waits for background
// work. Failures never escape a view: they are stored as Error.
package views
