package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/amankumarsingh77/slideshow-encoder/pkg/utils"
)

const (
	sourceDirName     = "source"
	normalizedDirName = "normalized"
	outputFileName    = "output.mp4"
	soundtrackName    = "soundtrack"
	normalizedExt     = ".jpg"
)

// Staging lays out per-job working directories under a shared root:
//
//	<root>/<jobID>/source/<i><ext>
//	<root>/<jobID>/source/soundtrack<ext>
//	<root>/<jobID>/normalized/<i>.jpg
//	<root>/<jobID>/output.mp4
//
// Slide indexes on disk are 1-based.
type Staging struct {
	root string
}

func NewStaging(root string) *Staging {
	return &Staging{root: root}
}

func (s *Staging) JobDir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

func (s *Staging) SourceDir(jobID string) string {
	return filepath.Join(s.JobDir(jobID), sourceDirName)
}

func (s *Staging) SourcePath(jobID string, index int, ext string) string {
	return filepath.Join(s.SourceDir(jobID), strconv.Itoa(index)+ext)
}

func (s *Staging) SoundtrackPath(jobID, ext string) string {
	return filepath.Join(s.SourceDir(jobID), soundtrackName+ext)
}

func (s *Staging) NormalizedDir(jobID string) string {
	return filepath.Join(s.JobDir(jobID), normalizedDirName)
}

func (s *Staging) NormalizedPath(jobID string, index int) string {
	return filepath.Join(s.NormalizedDir(jobID), strconv.Itoa(index)+normalizedExt)
}

func (s *Staging) OutputPath(jobID string) string {
	return filepath.Join(s.JobDir(jobID), outputFileName)
}

// Cleanup removes everything staged for jobID.
func (s *Staging) Cleanup(jobID string) error {
	if !utils.IsValidJobID(jobID) {
		return fmt.Errorf("refusing to clean staging for job id %q", jobID)
	}
	return os.RemoveAll(s.JobDir(jobID))
}
