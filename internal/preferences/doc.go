// Package preferences persists dashboard settings in a local SQLite file.
//
// The only setting today is the color theme, stored under the "theme" key.
// An unset theme reads as dark; any stored value other than "dark" reads as
// light.
package preferences
