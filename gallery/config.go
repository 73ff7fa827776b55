package gallery

// Config holds the gallery switches. It is built once at startup and passed
// by value into the sequencer, the cover rule, validation and pagination.
type Config struct {
	PhotosEnabled bool

	AudioFilesEnabled     bool
	AudioFormat1Extension string
	AudioFormat2Extension string
	AudioFormat2Required  bool

	VideoFilesEnabled     bool
	VideoFormat1Extension string
	VideoFormat2Extension string
	VideoFormat2Required  bool

	UserUploadsEnabled       bool
	UserUploadsLoginRequired bool
	UserUploadsAlbumName     string
	UserUploadsAlbumSlug     string

	PaginateBy int
}

func DefaultConfig() Config {
	return Config{
		PhotosEnabled:            true,
		AudioFormat1Extension:    "mp3",
		AudioFormat2Extension:    "ogg",
		VideoFormat1Extension:    "mp4",
		VideoFormat2Extension:    "webm",
		UserUploadsLoginRequired: true,
		UserUploadsAlbumName:     "User Photos",
		UserUploadsAlbumSlug:     "user-photos",
		PaginateBy:               10,
	}
}

// Enabled reports whether items of the given kind take part in listings
func (c Config) Enabled(kind Kind) bool {
	switch kind {
	case KindPhoto:
		return c.PhotosEnabled
	case KindVideo:
		return c.VideoFilesEnabled
	case KindAudio:
		return c.AudioFilesEnabled
	}
	return false
}

// EnabledKinds returns the enabled kinds in sequencer priority order
func (c Config) EnabledKinds() (kinds []Kind) {
	for _, kind := range Kinds {
		if c.Enabled(kind) {
			kinds = append(kinds, kind)
		}
	}
	return
}
