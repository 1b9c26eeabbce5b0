package sfz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/audiofile"
	"github.com/hiway/sfzmap/pkg/engine"
	"github.com/hiway/sfzmap/pkg/sample"
)

// AudioOpener opens uncompressed sample files for the engine.
type AudioOpener interface {
	Open(path string) (*audiofile.File, error)
}

// FailurePolicy decides what happens when a .wav or .aif sample cannot be opened.
type FailurePolicy int

const (
	// SkipRegion logs the failure and continues with the next line.
	SkipRegion FailurePolicy = iota
	// Abort stops the load and returns the error. The key map is not built.
	Abort
)

// ParseFailurePolicy maps "skip" and "abort" to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "skip":
		return SkipRegion, nil
	case "abort":
		return Abort, nil
	}
	return SkipRegion, fmt.Errorf("unknown failure policy %q (want skip or abort)", s)
}

func (p FailurePolicy) String() string {
	if p == Abort {
		return "abort"
	}
	return "skip"
}

// Option configures a load.
type Option func(*options)

type options struct {
	log    zerolog.Logger
	opener AudioOpener
	policy FailurePolicy
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithOpener replaces the default audiofile opener.
func WithOpener(opener AudioOpener) Option {
	return func(o *options) { o.opener = opener }
}

// WithFailurePolicy sets the sample open failure policy. The default is SkipRegion.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) { o.policy = p }
}

// Result summarizes a load.
type Result struct {
	Regions     int // <region> lines seen
	Loaded      int // handed to the engine
	Unsupported int // skipped for their extension or a missing sample
	Failed      int // skipped because the sample could not be opened
}

// LoadDir loads the instrument file name inside dir.
func LoadDir(dir, name string, eng engine.Engine, opts ...Option) (Result, error) {
	return LoadFile(filepath.Join(dir, name), eng, opts...)
}

// LoadFile reads an instrument file and feeds every region to eng, then
// builds the key map. Sample paths resolve against the file's directory.
func LoadFile(path string, eng engine.Engine, opts ...Option) (Result, error) {
	o := newOptions(opts)

	data, err := os.ReadFile(path)
	if err != nil {
		o.log.Error().Err(err).Str("path", path).Msg("Could not load SFZ")
		return Result{}, fmt.Errorf("failed to read sfz file: %w", err)
	}
	return load(string(data), filepath.Dir(path), eng, o)
}

// Load parses content as if it were read from a file in baseDir.
func Load(content, baseDir string, eng engine.Engine, opts ...Option) (Result, error) {
	return load(content, baseDir, eng, newOptions(opts))
}

func newOptions(opts []Option) *options {
	o := &options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.opener == nil {
		o.opener = audiofile.NewOpener(o.log)
	}
	o.log = o.log.With().Str("component", "sfz").Logger()
	return o
}

// parser is the working state of one load.
type parser struct {
	*options
	eng     engine.Engine
	baseDir string
	group   GroupDefaults
	result  Result
}

func load(content, baseDir string, eng engine.Engine, o *options) (Result, error) {
	p := &parser{
		options: o,
		eng:     eng,
		baseDir: baseDir,
		group:   NewGroupDefaults(),
	}

	lineNum := 0
	for line := range Lines(content) {
		lineNum++
		directive, rest := Classify(line)
		switch directive {
		case DirectiveGroup:
			p.parseGroup(rest, lineNum)
		case DirectiveRegion:
			if err := p.parseRegion(rest, lineNum); err != nil {
				return p.result, err
			}
		default:
			p.log.Trace().Int("line", lineNum).Str("text", line).Msg("Ignoring line")
		}
	}

	p.eng.BuildKeyMap()
	p.log.Debug().
		Int("regions", p.result.Regions).
		Int("loaded", p.result.Loaded).
		Int("unsupported", p.result.Unsupported).
		Int("failed", p.result.Failed).
		Msg("SFZ load complete")
	return p.result, nil
}

func (p *parser) parseGroup(rest string, lineNum int) {
	p.group = NewGroupDefaults()
	for _, op := range Tokenize(rest) {
		if !p.group.Apply(op) {
			p.log.Trace().Int("line", lineNum).Str("opcode", op.Key).Msg("Ignoring group opcode")
		}
	}
	if len(p.group.Defaulted) > 0 {
		p.log.Debug().Int("line", lineNum).Strs("opcodes", p.group.Defaulted).Msg("Defaulted unparseable group values")
	}
}

func (p *parser) parseRegion(rest string, lineNum int) error {
	p.result.Regions++

	region := NewRegionOverrides()
	for _, op := range Tokenize(rest) {
		if !region.Apply(op) {
			p.log.Trace().Int("line", lineNum).Str("opcode", op.Key).Msg("Ignoring region opcode")
		}
	}
	if len(region.Defaulted) > 0 {
		p.log.Debug().Int("line", lineNum).Strs("opcodes", region.Defaulted).Msg("Defaulted unparseable region values")
	}

	return p.dispatch(Resolve(p.group, region), region.Sample, lineNum)
}

// ResolveSamplePath converts backslashes in a sample path to slashes and
// joins it to baseDir.
func ResolveSamplePath(baseDir, samplePath string) string {
	return filepath.Join(baseDir, filepath.FromSlash(strings.ReplaceAll(samplePath, `\`, "/")))
}

func (p *parser) dispatch(d sample.Descriptor, samplePath string, lineNum int) error {
	path := ResolveSamplePath(p.baseDir, samplePath)
	log := p.log.With().Int("line", lineNum).Str("sample", samplePath).Logger()

	switch {
	case strings.HasSuffix(samplePath, ".wv"):
		p.logRegion(log, d)
		p.eng.LoadCompressedSampleFile(d, path)
	case strings.HasSuffix(samplePath, ".aif"), strings.HasSuffix(samplePath, ".wav"):
		f, err := p.opener.Open(path)
		if err != nil {
			if p.policy == Abort {
				log.Error().Err(err).Msg("Could not open sample")
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			log.Warn().Err(err).Msg("Could not open sample, skipping region")
			p.result.Failed++
			return nil
		}
		p.logRegion(log, d)
		p.eng.LoadAudioFile(d, f)
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close sample file")
		}
	default:
		log.Debug().Msg("Skipping region with unsupported sample")
		p.result.Unsupported++
		return nil
	}

	p.result.Loaded++
	return nil
}

func (p *parser) logRegion(log zerolog.Logger, d sample.Descriptor) {
	log.Info().
		Int("note", d.NoteNumber).
		Float64("frequency_hz", d.NoteFrequency).
		Int("lokey", d.MinNote).
		Int("hikey", d.MaxNote).
		Int("lovel", d.MinVelocity).
		Int("hivel", d.MaxVelocity).
		Msg("Loading region")
}
