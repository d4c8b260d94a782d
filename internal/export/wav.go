package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/SHayashida/DrumTrainer/internal/audio"
)

// wavHeader is the canonical 44-byte RIFF/WAVE header for 16-bit PCM.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32
	AudioFormat   uint16 // 1 = PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// WriteWAV serializes the buffer as a 16-bit PCM WAV file. The sample data
// is written verbatim, so a subsequent ReadWAV reproduces it bit-exactly.
// On failure the partial file is removed; a failed export leaves no artifact.
func WriteWAV(path string, buf *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeWAV(f, buf); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeWAV(w io.Writer, buf *audio.Buffer) error {
	data := audio.SamplesToBytes(buf.Samples)
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(data)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   audio.Channels,
		SampleRate:    uint32(buf.Rate),
		ByteRate:      uint32(buf.Rate * audio.Channels * audio.BitDepth / 8),
		BlockAlign:    audio.Channels * audio.BitDepth / 8,
		BitsPerSample: audio.BitDepth,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(data)),
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}
	if _, err := bw.Write(data); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadWAV parses a 16-bit PCM WAV file back into a buffer. Unknown chunks
// are skipped, so files written by other tools load as well.
func ReadWAV(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var riff struct {
		ChunkID   [4]byte
		ChunkSize uint32
		Format    [4]byte
	}
	if err := binary.Read(f, binary.LittleEndian, &riff); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if string(riff.ChunkID[:]) != "RIFF" || string(riff.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("read %s: not a RIFF/WAVE file", path)
	}

	var (
		rate     int
		channels int
		bits     int
		data     []byte
	)
	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(f, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		switch string(chunk.ID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(f, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, fmt.Errorf("read %s: fmt chunk: %w", path, err)
			}
			rate = int(fmtChunk.SampleRate)
			channels = int(fmtChunk.NumChannels)
			bits = int(fmtChunk.BitsPerSample)
			if rest := int64(chunk.Size) - 16; rest > 0 {
				if _, err := f.Seek(rest, io.SeekCurrent); err != nil {
					return nil, fmt.Errorf("read %s: %w", path, err)
				}
			}
		case "data":
			data = make([]byte, chunk.Size)
			if _, err := io.ReadFull(f, data); err != nil {
				return nil, fmt.Errorf("read %s: data chunk: %w", path, err)
			}
		default:
			skip := int64(chunk.Size)
			if chunk.Size%2 == 1 {
				skip++ // chunks are word-aligned
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
		}
		if rate != 0 && data != nil {
			break
		}
	}

	if rate == 0 || data == nil {
		return nil, fmt.Errorf("read %s: missing fmt or data chunk", path)
	}
	if channels != audio.Channels || bits != audio.BitDepth {
		return nil, fmt.Errorf("read %s: want %d-channel %d-bit PCM, got %d-channel %d-bit",
			path, audio.Channels, audio.BitDepth, channels, bits)
	}
	return &audio.Buffer{Rate: rate, Samples: audio.BytesToSamples(data)}, nil
}
