package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// categoryByExt maps file extensions to the category folder files are sorted
// into. Unknown extensions are skipped, never guessed.
var categoryByExt = map[string]string{
	".pdf": "Documents", ".doc": "Documents", ".docx": "Documents",
	".txt": "Documents", ".rtf": "Documents", ".odt": "Documents",
	".xls": "Documents", ".xlsx": "Documents", ".csv": "Documents",
	".ppt": "Documents", ".pptx": "Documents",

	".jpg": "Images", ".jpeg": "Images", ".png": "Images", ".gif": "Images",
	".bmp": "Images", ".svg": "Images", ".webp": "Images", ".ico": "Images",

	".mp4": "Videos", ".mkv": "Videos", ".avi": "Videos",
	".mov": "Videos", ".wmv": "Videos", ".webm": "Videos",

	".mp3": "Audio", ".wav": "Audio", ".flac": "Audio",
	".ogg": "Audio", ".m4a": "Audio",

	".zip": "Archives", ".rar": "Archives", ".7z": "Archives",
	".tar": "Archives", ".gz": "Archives",

	".ts": "Code", ".js": "Code", ".py": "Code", ".java": "Code",
	".cpp": "Code", ".c": "Code", ".h": "Code", ".cs": "Code",
	".go": "Code", ".rs": "Code", ".html": "Code", ".css": "Code",
	".json": "Code", ".xml": "Code", ".yaml": "Code", ".yml": "Code",

	".exe": "Installers", ".msi": "Installers", ".dmg": "Installers",
	".deb": "Installers", ".rpm": "Installers",
}

// Move records one planned or performed file relocation.
type Move struct {
	From string
	To   string
}

// OrganizeResult summarizes one organize pass over a directory.
type OrganizeResult struct {
	Moved   int
	Skipped int
	Details []Move
}

// OrganizeDirectory sorts the files directly under sourcePath into category
// subfolders by extension. With dryRun set, it reports the plan without
// touching the filesystem. Subdirectories are left alone.
func OrganizeDirectory(sourcePath string, dryRun bool) (OrganizeResult, error) {
	var result OrganizeResult

	entries, err := os.ReadDir(sourcePath)
	if err != nil {
		return result, fmt.Errorf("reading %s: %w", sourcePath, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		category, ok := categoryByExt[ext]
		if !ok {
			result.Skipped++
			continue
		}

		destDir := filepath.Join(sourcePath, category)
		move := Move{
			From: filepath.Join(sourcePath, entry.Name()),
			To:   filepath.Join(destDir, entry.Name()),
		}

		if !dryRun {
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				return result, fmt.Errorf("creating %s: %w", destDir, err)
			}
			if err := os.Rename(move.From, move.To); err != nil {
				return result, fmt.Errorf("moving %s: %w", entry.Name(), err)
			}
		}

		result.Details = append(result.Details, move)
		result.Moved++
	}

	return result, nil
}
