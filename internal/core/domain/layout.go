package domain

const (
	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Names of the properties the engine seeds or consults.
const (
	PropVersion          = "emmet.version"
	PropFilename         = "emmet.filename"
	PropLocation         = "emmet.location"
	PropProjectName      = "emmet.project.name"
	PropProjectBaseDir   = "emmet.project.basedir"
	PropProjectBuildFile = "emmet.project.buildfile"
	PropProjectDefault   = "emmet.project.default"
	PropFrameworkName    = "emmet.framework.name"
	PropFrameworkDesc    = "emmet.framework.description"
	PropOnSuccess        = "emmet.onsuccess"
	PropOnFailure        = "emmet.onfailure"

	// EnvPropertyPrefix prefixes the properties seeded from environment variables.
	EnvPropertyPrefix = "sys.env."
)
