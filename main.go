// SPDX-License-Identifier: MPL-2.0

// miner is a CLI for maintaining Minecraft server services: resolving,
// downloading and linking JAR artifacts, launching services, and
// managing backups.
package main

import cmd "miner-cli/cmd/miner"

func main() {
	cmd.Execute()
}
