package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

// writeTestWAV writes a mono 16-bit WAV with numSamples of a 440Hz sine
// wave and returns its path.
func writeTestWAV(t *testing.T, numSamples int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	const sampleRate = 16000
	data := make([]int, numSamples)
	for i := range data {
		data[i] = int(10000 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

func TestExtractAcousticFeatures(t *testing.T) {
	path := writeTestWAV(t, 4*featureFrameSize)

	features, err := ExtractAcousticFeatures(path)
	require.NoError(t, err)
	// Two features per full frame
	require.Len(t, features, 8)

	// A sine wave has non-trivial energy and zero crossings in every frame
	for i := 0; i < len(features); i += 2 {
		require.Greater(t, features[i], float32(0), "rms of frame %d", i/2)
		require.Greater(t, features[i+1], float32(0), "zcr of frame %d", i/2)
	}
}

func TestExtractAcousticFeaturesTooShort(t *testing.T) {
	path := writeTestWAV(t, featureFrameSize/2)

	_, err := ExtractAcousticFeatures(path)
	require.ErrorIs(t, err, ErrFeatureExtraction)
}

func TestExtractAcousticFeaturesNotAWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not audio"), 0644))

	_, err := ExtractAcousticFeatures(path)
	require.ErrorIs(t, err, ErrFeatureExtraction)
}

func TestExtractAcousticFeaturesMissingFile(t *testing.T) {
	_, err := ExtractAcousticFeatures(filepath.Join(t.TempDir(), "nope.wav"))
	require.ErrorIs(t, err, ErrFeatureExtraction)
}

func TestNormalizeFeatureLengthPads(t *testing.T) {
	features := []float32{0.1, 0.2, 0.3}

	normalized := NormalizeFeatureLength(features, 6)
	require.Equal(t, []float32{0.1, 0.2, 0.3, 0, 0, 0}, normalized)
}

func TestNormalizeFeatureLengthTruncates(t *testing.T) {
	features := []float32{0.1, 0.2, 0.3, 0.4}

	normalized := NormalizeFeatureLength(features, 2)
	require.Equal(t, []float32{0.1, 0.2}, normalized)
}

func TestNormalizeFeatureLengthExact(t *testing.T) {
	features := []float32{0.5, 0.6}

	normalized := NormalizeFeatureLength(features, 2)
	require.Equal(t, features, normalized)
}
