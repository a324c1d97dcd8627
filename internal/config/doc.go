// Package config provides configuration management for PhishSniffer.
//
// Configuration comes from three layers, in increasing precedence:
//  1. Built-in defaults (NewConfig)
//  2. The .phishsniffer YAML file (special patterns, trusted domains)
//  3. CLI flags
//
// The YAML file is searched in the current directory and then in the user's
// home directory, matching common dotfile conventions. Data directories
// (model files, database) default to XDG base directory paths.
package config
