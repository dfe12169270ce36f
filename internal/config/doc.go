// Package config loads the settings of the vimvar command line tool.
//
// Settings are layered, later layers overriding earlier ones:
//
//  1. Built-in defaults
//  2. A TOML settings file, by default $XDG_CONFIG_HOME/vimvar/config.toml
//  3. VIMVAR_* environment variables
//  4. Command line flags, applied by the caller
//
// These are settings of the tool itself. The vim or neovim startup file a
// variable is read from is located by package locate.
package config
