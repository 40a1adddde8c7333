package driven

// ConfigStore holds flat settings addressed by dotted keys such as
// "clustering.threshold". Typed getters return the zero value when a key is
// missing or holds another type; only Get distinguishes the two.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path is where the store persists, for display.
	Path() string
}
