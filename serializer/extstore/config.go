package extstore

// Config holds the settings of the external storage.
type Config struct {
	// BaseDir is the directory relative side file paths are resolved against.
	BaseDir string `json:"baseDir" koanf:"basedir"`
	// Backend selects where side files are stored: "file", "badger" or "memory".
	Backend string `json:"backend" koanf:"backend"`
	// BadgerDir is the database directory of the "badger" backend.
	BadgerDir string `json:"badgerDir" koanf:"badgerdir"`
	// Compression is applied to side files: "none", "gzip" or "zstd".
	Compression string `json:"compression" koanf:"compression"`
	// Workers is the number of goroutines used for batch operations. Zero uses the default.
	Workers int `json:"workers" koanf:"workers"`
}

const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// DefaultConfig is the configuration used if nothing else is configured.
var DefaultConfig = Config{
	Backend:     BackendFile,
	Compression: "none",
}
