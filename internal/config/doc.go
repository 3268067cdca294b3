// Package config loads the roost configuration file.
//
// Configuration lives at ~/.config/roost/config.yaml and layers over
// built-in defaults; a missing file means defaults apply unchanged.
package config
