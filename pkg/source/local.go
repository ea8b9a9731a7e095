package source

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/bmatcuk/doublestar/v4"
)

// SimilarArchive is an archive in the install root that is not the expected one
type SimilarArchive struct {
	Path     string
	Distance int
}

// FindSimilarArchives lists <tool>_*_PUBLIC*.zip files in dir other than expected,
// closest name first. They are reported to the operator and never used.
func FindSimilarArchives(dir, tool, expected string) []SimilarArchive {
	matches, err := doublestar.Glob(os.DirFS(dir), tool+"_*_PUBLIC*.zip")
	if err != nil {
		return nil
	}

	var similar []SimilarArchive
	for _, match := range matches {
		if match == expected {
			continue
		}
		similar = append(similar, SimilarArchive{
			Path:     filepath.Join(dir, match),
			Distance: levenshtein.ComputeDistance(expected, match),
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Distance != similar[j].Distance {
			return similar[i].Distance < similar[j].Distance
		}
		return similar[i].Path < similar[j].Path
	})
	return similar
}
