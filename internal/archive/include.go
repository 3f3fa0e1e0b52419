// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"
	"path/filepath"

	"github.com/magiconair/properties"

	"miner-cli/pkg/jarsfile"
)

// IncludeList builds the backup include list for a server directory.
// Paper servers preserve the server configuration plus every directory
// belonging to the configured world (level-name in server.properties,
// which also covers level-name_nether and friends). Other services have
// no include list and are not archived.
func IncludeList(serverDir string, service jarsfile.ServiceKind) ([]string, error) {
	if service != jarsfile.ServicePaper {
		return nil, nil
	}

	propsPath := filepath.Join(serverDir, "server.properties")
	props, err := properties.LoadFile(propsPath, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", propsPath, err)
	}

	include := []string{
		propsPath,
		filepath.Join(serverDir, "config"),
		filepath.Join(serverDir, "bukkit.yml"),
		filepath.Join(serverDir, "spigot.yml"),
		filepath.Join(serverDir, "usercache.json"),
	}

	level := props.GetString("level-name", "world")
	worlds, err := filepath.Glob(filepath.Join(serverDir, level+"*"))
	if err != nil {
		return nil, fmt.Errorf("globbing world directories: %w", err)
	}
	include = append(include, worlds...)

	return include, nil
}
