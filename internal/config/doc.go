// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML
// as the file format.
//
// Configuration is loaded from ~/.config/miner/config.toml (or XDG
// equivalent on Linux, ~/Library/Application Support/miner/config.toml
// on macOS, %APPDATA%\miner\config.toml on Windows), with a config.toml
// in the working directory as a fallback. Values may also come from
// MINER_* environment variables (e.g. MINER_RCON_PORT). The package
// provides type-safe access to the jar cache, server and backup roots,
// the default game version, and RCON connection defaults.
package config
