package story

import (
	"sync"
	"time"

	"github.com/vocaltales/storyteller/pkg/utils"
)

const transcriptTimeLayout = "2006-01-02_15-04-05"

// Transcript keeps a text copy of a session. The file is rewritten in full on
// every turn, never appended to.
type Transcript struct {
	dir  string
	name string
	mu   sync.Mutex
}

// NewTranscript names the file after startedAt, plus sessionID when it is not empty.
func NewTranscript(dir string, startedAt time.Time, sessionID string) *Transcript {
	name := "transcript_" + startedAt.Format(transcriptTimeLayout)
	if sessionID != "" {
		name += "_" + sessionID
	}
	return &Transcript{dir: dir, name: name}
}

func (t *Transcript) Record(history History) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := utils.SaveTextToFile(t.dir, t.name, "txt", history.String()+"\n")
	return err
}

// Path is the file the transcript is written to.
func (t *Transcript) Path() string {
	return utils.FilePath(t.dir, t.name, "txt")
}
