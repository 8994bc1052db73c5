// Package cli provides the gallery admin console.
//
// It connects straight to the gallery database and offers a small REPL for
// the tasks that are deliberately kept off the public HTTP surface:
//   - import the guest list from a YAML file
//   - list guests and photos waiting for moderation
//   - approve or reject photos
//   - mint a guest session token for invitation links or local testing
//   - hash a site password for the server configuration
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
