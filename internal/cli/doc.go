// Package cli provides the NewsInsight command-line client.
//
// Commands are built with cobra over a backend.Client opened from the
// configuration on first use:
//   - news, metrics, leaderboard, rumors, profile: read the feeds
//   - login, register, logout, whoami: manage the session
//   - verify: record a verdict on a news item (needs a session)
//   - watch: stream realtime change events
//   - theme: read or change the stored dashboard theme
//   - upload: send evidence or an avatar through a presigned URL
//   - download: fetch an uploaded object through a presigned URL
//   - shell: an interactive loop sharing one session across commands
//
// Every command accepts --json for machine-readable output.
package cli
