// Package notifications delivers run events via ntfy.
//
// The default implementation publishes to the ntfy topic URL configured in
// config.toml and degrades to a no-op when notifications are disabled.
// Individual events can be switched off per config so a nightly refresh can
// stay quiet while new-episode alerts still go out.
package notifications
