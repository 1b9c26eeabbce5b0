package engine

import (
	"github.com/hiway/sfzmap/pkg/audiofile"
	"github.com/hiway/sfzmap/pkg/sample"
)

// Engine is the sampler side of an instrument load. Calls arrive in file
// order and are expected to complete synchronously.
type Engine interface {
	// LoadCompressedSampleFile loads a compressed (.wv) sample from path.
	LoadCompressedSampleFile(d sample.Descriptor, path string)
	// LoadAudioFile loads an already opened uncompressed sample file.
	LoadAudioFile(d sample.Descriptor, f *audiofile.File)
	// BuildKeyMap finalizes the note/velocity lookup after all loads.
	BuildKeyMap()
}
