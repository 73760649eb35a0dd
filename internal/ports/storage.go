package ports

// FlagStore persists small boolean flags across process restarts.
type FlagStore interface {
	// GetBool returns the stored value and whether the key was present.
	GetBool(key string) (value bool, ok bool, err error)
	SetBool(key string, value bool) error
	Delete(key string) error
	Close() error
}
