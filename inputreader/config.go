package inputreader

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultEncoding is used when neither the caller nor the configuration
// names a source encoding.
const DefaultEncoding = "UTF-8"

// Config controls how a Reader finds and decodes its inputs. The CLI
// fills it from flags, JAVAMODEL_* variables and a YAML file.
type Config struct {
	// Encoding is the IANA name of the charset of source files.
	Encoding string `mapstructure:"encoding"`
	// ClassPath lists directories and jar files to load classes from.
	ClassPath []string `mapstructure:"classpath"`
	// Exclude holds doublestar globs, relative to a package folder root,
	// of files and directories a scan skips.
	Exclude []string `mapstructure:"exclude"`
}

func DefaultConfig() Config {
	return Config{Encoding: DefaultEncoding}
}

// Validate checks the exclude patterns.
func (c Config) Validate() error {
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad exclude pattern %q", ErrInvalidInput, pattern)
		}
	}
	return nil
}
