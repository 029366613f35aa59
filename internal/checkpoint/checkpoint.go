// Package checkpoint persists trained locator parameters in Born's native
// .born format.
//
// Writes are serialized through a lock file next to the artifact
// (<path>.lock), so two runs sharing an output directory never interleave
// writes to the same checkpoint.
package checkpoint

import (
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ModelType is recorded in the .born header.
const ModelType = "charpos.Locator"

// Metadata keys written into the checkpoint header.
const (
	KeyRunID          = "run_id"
	KeySentenceLength = "sentence_length"
	KeyCharDim        = "char_dim"
	KeyAlphabet       = "alphabet"
	KeyTarget         = "target"
)

// Meta describes the run a checkpoint came from.
type Meta struct {
	RunID          string
	SentenceLength int
	CharDim        int
	Alphabet       string
	Target         string
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func (m Meta) toMap() map[string]string {
	return map[string]string{
		KeyRunID:          m.RunID,
		KeySentenceLength: strconv.Itoa(m.SentenceLength),
		KeyCharDim:        strconv.Itoa(m.CharDim),
		KeyAlphabet:       m.Alphabet,
		KeyTarget:         m.Target,
	}
}

func metaFromMap(md map[string]string) (Meta, error) {
	m := Meta{
		RunID:    md[KeyRunID],
		Alphabet: md[KeyAlphabet],
		Target:   md[KeyTarget],
	}
	var err error
	if m.SentenceLength, err = strconv.Atoi(md[KeySentenceLength]); err != nil {
		return Meta{}, errors.Wrapf(err, "bad %s metadata", KeySentenceLength)
	}
	if m.CharDim, err = strconv.Atoi(md[KeyCharDim]); err != nil {
		return Meta{}, errors.Wrapf(err, "bad %s metadata", KeyCharDim)
	}
	return m, nil
}

// Save writes module's state dict to path with meta in the header.
// A missing RunID is filled with a new one; the id actually written is
// returned.
func Save[B tensor.Backend](path string, module nn.Module[B], meta Meta) (string, error) {
	if meta.RunID == "" {
		meta.RunID = NewRunID()
	}

	var saveErr error
	err := execOnFileLock(path+".lock", func() {
		saveErr = nn.Save(module, path, ModelType, meta.toMap())
	})
	if err != nil {
		return "", err
	}
	if saveErr != nil {
		return "", errors.Wrapf(saveErr, "failed to save checkpoint %q", path)
	}

	klog.V(1).Infof("saved checkpoint %q (run %s)", path, meta.RunID)
	return meta.RunID, nil
}

// Load restores parameters saved by Save into module and returns the
// metadata of the run that produced them.
func Load[B tensor.Backend](path string, backend B, module nn.Module[B]) (Meta, error) {
	if _, err := os.Stat(path); err != nil {
		return Meta{}, errors.Wrapf(err, "checkpoint %q", path)
	}
	header, err := nn.Load(path, backend, module)
	if err != nil {
		return Meta{}, errors.Wrapf(err, "failed to load checkpoint %q", path)
	}
	if header.ModelType != ModelType {
		return Meta{}, errors.Errorf("checkpoint %q holds a %q, not a %q", path, header.ModelType, ModelType)
	}
	meta, err := metaFromMap(header.Metadata)
	if err != nil {
		return Meta{}, errors.WithMessagef(err, "checkpoint %q", path)
	}
	return meta, nil
}

// execOnFileLock locks lockPath (creating it if needed), runs fn and
// unlocks. While another process holds the lock it polls every 100 to
// 200 milliseconds.
func execOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)

	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		klog.V(2).Infof("waiting for lock %q", lockPath)
		time.Sleep(time.Millisecond * time.Duration(100+rand.IntN(100)))
	}

	defer func() {
		unlockErr := fileLock.Unlock()
		if unlockErr != nil {
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
			} else {
				klog.Errorf("Error unlocking file %q: %v", lockPath, unlockErr)
			}
		}
	}()

	fn()
	return
}
