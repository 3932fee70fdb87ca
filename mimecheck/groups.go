package mimecheck

// Group is a shorthand for a family of related MIME types.
type Group string

const (
	AllImages    Group = "image/*"
	AllDocuments Group = "document/*"
	AllAudio     Group = "audio/*"
	AllVideo     Group = "video/*"
	AllText      Group = "text/*"
)

var groupTypes = map[Group][]string{
	AllImages: {
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/svg+xml",
		"image/tiff",
		"image/bmp",
	},
	AllDocuments: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/plain",
		"text/csv",
		"application/rtf",
	},
	AllAudio: {
		"audio/mpeg",
		"audio/wav",
		"audio/ogg",
		"audio/aac",
		"audio/flac",
		"audio/mp4",
	},
	AllVideo: {
		"video/mp4",
		"video/mpeg",
		"video/webm",
		"video/quicktime",
		"video/x-msvideo",
	},
	AllText: {
		"text/plain",
		"text/html",
		"text/css",
		"text/csv",
		"text/javascript",
		"text/xml",
		"text/markdown",
	},
}

// ExpandGroups replaces group shorthands in an allow-list with their member
// types. Expansion happens when the allow-list is built; the matcher itself
// never interprets wildcards.
func ExpandGroups(allowed []string) []string {
	expanded := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if members, ok := groupTypes[Group(a)]; ok {
			expanded = append(expanded, members...)
			continue
		}
		expanded = append(expanded, a)
	}
	return expanded
}
