package language

// Key selects the languages a file is looked up against: either the languages
// claiming one extension, or the languages identified by filename pattern only.
type Key struct {
	ext           string
	extensionless bool
}

// HasExtension keys languages claiming ext. The empty extension is a valid
// key for files without one.
func HasExtension(ext string) Key {
	return Key{ext: NormalizeExtension(ext)}
}

// Extensionless keys languages that declare no extension at all.
func Extensionless() Key {
	return Key{extensionless: true}
}

// Extension returns the keyed extension, or false for the Extensionless key.
func (k Key) Extension() (string, bool) {
	return k.ext, !k.extensionless
}

func (k Key) String() string {
	if k.extensionless {
		return "<extensionless>"
	}
	if k.ext == "" {
		return "<no extension>"
	}
	return k.ext
}
