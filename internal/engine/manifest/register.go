package manifest

import "github.com/nucleus/mesh-bridge/internal/engine"

// DriverName is the registry key for the manifest driver.
const DriverName = "manifest"

func init() {
	engine.Register(DriverName, func() engine.Engine { return Driver{} })
}
