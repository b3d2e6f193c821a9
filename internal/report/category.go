package report

// Category is a high-level file type grouping used to color the
// extension table in the TUI.
type Category int

const (
	CatOther Category = iota
	CatMedia
	CatCode
	CatArchive
	CatDocument
	CatSystem
	CatExecutable
)

// CategoryName returns the display name for a category.
func CategoryName(cat Category) string {
	switch cat {
	case CatMedia:
		return "Media"
	case CatCode:
		return "Code"
	case CatArchive:
		return "Archives"
	case CatDocument:
		return "Documents"
	case CatSystem:
		return "System"
	case CatExecutable:
		return "Executables"
	default:
		return "Other"
	}
}

// CategoryColor returns the theme color for a category.
func CategoryColor(cat Category) string {
	switch cat {
	case CatMedia:
		return "#E06C75" // Red
	case CatCode:
		return "#61AFEF" // Blue
	case CatArchive:
		return "#E5C07B" // Yellow
	case CatDocument:
		return "#98C379" // Green
	case CatSystem:
		return "#C678DD" // Purple
	case CatExecutable:
		return "#D19A66" // Orange
	default:
		return "#ABB2BF" // Gray
	}
}

// catMap maps extension bucket keys to categories.
var catMap = map[string]Category{
	// Media
	".jpg": CatMedia, ".jpeg": CatMedia, ".png": CatMedia, ".gif": CatMedia,
	".svg": CatMedia, ".webp": CatMedia, ".heic": CatMedia, ".tiff": CatMedia,
	".mp4": CatMedia, ".mkv": CatMedia, ".avi": CatMedia, ".mov": CatMedia,
	".webm": CatMedia, ".mp3": CatMedia, ".flac": CatMedia, ".wav": CatMedia,
	".ogg": CatMedia, ".m4a": CatMedia, ".opus": CatMedia,

	// Code
	".go": CatCode, ".py": CatCode, ".js": CatCode, ".ts": CatCode,
	".rs": CatCode, ".c": CatCode, ".cpp": CatCode, ".h": CatCode,
	".java": CatCode, ".rb": CatCode, ".php": CatCode, ".sh": CatCode,
	".html": CatCode, ".css": CatCode, ".sql": CatCode,
	".json": CatCode, ".yaml": CatCode, ".yml": CatCode, ".toml": CatCode,
	".xml": CatCode, ".proto": CatCode,

	// Archives
	".zip": CatArchive, ".tar": CatArchive, ".gz": CatArchive, ".bz2": CatArchive,
	".xz": CatArchive, ".zst": CatArchive, ".rar": CatArchive, ".7z": CatArchive,
	".iso": CatArchive, ".deb": CatArchive, ".rpm": CatArchive, ".tgz": CatArchive,
	".jar": CatArchive,

	// Documents
	".pdf": CatDocument, ".doc": CatDocument, ".docx": CatDocument,
	".xls": CatDocument, ".xlsx": CatDocument, ".ppt": CatDocument,
	".pptx": CatDocument, ".odt": CatDocument, ".txt": CatDocument,
	".md": CatDocument, ".rst": CatDocument, ".csv": CatDocument,
	".epub": CatDocument,

	// System
	".log": CatSystem, ".bak": CatSystem, ".tmp": CatSystem, ".swp": CatSystem,
	".lock": CatSystem, ".cache": CatSystem, ".dat": CatSystem, ".db": CatSystem,
	".sqlite": CatSystem, ".ini": CatSystem, ".cfg": CatSystem, ".conf": CatSystem,
	".dll": CatSystem, ".dylib": CatSystem, ".so": CatSystem,

	// Executables
	".exe": CatExecutable, ".app": CatExecutable, ".msi": CatExecutable,
	".bin": CatExecutable, ".wasm": CatExecutable, ".pyc": CatExecutable,
	".class": CatExecutable, ".o": CatExecutable, ".a": CatExecutable,
}

// Classify maps an extension bucket key (as produced by
// scan.ExtensionKey) to its category.
func Classify(ext string) Category {
	if cat, ok := catMap[ext]; ok {
		return cat
	}
	return CatOther
}
