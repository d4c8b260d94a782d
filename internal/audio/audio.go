package audio

const (
	Channels = 2
	BitDepth = 16

	// DefaultSampleRate is the rate the separation stage renders stems at.
	DefaultSampleRate = 44100
	// PreviewSampleRate is the rate the preview transport runs at
	// (libopus only accepts 8/12/16/24/48 kHz).
	PreviewSampleRate = 48000

	maxSample = 32767
	minSample = -32768

	// fullScale is the 0 dBFS reference amplitude, the largest magnitude an
	// int16 sample can carry.
	fullScale = 32768.0
)
