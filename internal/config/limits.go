package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Matches the storage backend's VARCHAR(255) column.
	MaxFolderNameLength = 255

	// MaxTeamIDLength is the maximum length for team identifiers.
	MaxTeamIDLength = 100

	// DefaultMaxUploadBytes caps multipart uploads (25 MiB).
	// Interview transcripts are small; larger files are almost always mistakes.
	DefaultMaxUploadBytes = 25 << 20

	// MaxJSONBodyBytes caps JSON request bodies on the BFF surface.
	MaxJSONBodyBytes = 1 << 20
)
