package ports

// FileSystem abstracts the file operations used to read tiles and write results.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path with data, creating parent directories.
	// Readers never observe a partially written file.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Glob expands a shell pattern. When nothing matches, the pattern
	// itself is returned so the caller reports the missing file.
	Glob(pattern string) ([]string, error)
}
