// Package all imports all built-in smartbar extensions.
// Import this package to register all built-in commands.
package all

import (
	// Built-in extensions - each registers itself via init()
	_ "github.com/jpl-au/smartbar/extension/core"
	_ "github.com/jpl-au/smartbar/extension/index"
	_ "github.com/jpl-au/smartbar/extension/search"
)
