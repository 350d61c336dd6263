package etc

import (
	"fmt"
	"time"

	"github.com/nrednav/cuid2"
)

func NewFreshID() string {
	return cuid2.Generate()
}

// ArtifactName is the filename used when an artifact is persisted into the
// working directory, e.g. "live_1712345678.mp3".
func ArtifactName(mode string, t time.Time) string {
	return fmt.Sprintf("%s_%d.mp3", mode, t.Unix())
}
