package services

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// featureFrameSize is the analysis window, in samples, used for acoustic
// feature extraction. Two features (RMS energy and zero-crossing rate)
// are emitted per frame.
const featureFrameSize = 1024

// ExtractAcousticFeatures decodes a WAV file and computes a flat acoustic
// feature vector: per-frame RMS energy and zero-crossing rate over fixed
// windows. Multi-channel audio is mixed down to mono first.
func ExtractAcousticFeatures(audioPath string) ([]float32, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open audio file: %v", ErrFeatureExtraction, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrFeatureExtraction)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode PCM data: %v", ErrFeatureExtraction, err)
	}

	samples := mixToMono(buf.Data, buf.Format.NumChannels, int(decoder.BitDepth))
	if len(samples) < featureFrameSize {
		return nil, fmt.Errorf("%w: sample too short (%d samples)", ErrFeatureExtraction, len(samples))
	}

	return frameFeatures(samples, featureFrameSize), nil
}

// NormalizeFeatureLength pads the vector with zeros or truncates it so its
// length matches exactly what the classifier was trained with. The target
// length is model configuration; inferring it at runtime would silently
// produce meaningless predictions.
func NormalizeFeatureLength(features []float32, length int) []float32 {
	normalized := make([]float32, length)
	copy(normalized, features)
	return normalized
}

// mixToMono averages interleaved channels and scales samples to [-1, 1].
func mixToMono(data []int, numChannels, bitDepth int) []float64 {
	if numChannels < 1 {
		numChannels = 1
	}

	scale := float64(int64(1) << (bitDepth - 1))
	if scale == 0 {
		scale = 1
	}

	n := len(data) / numChannels
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < numChannels; c++ {
			sum += float64(data[i*numChannels+c])
		}
		samples[i] = sum / float64(numChannels) / scale
	}

	return samples
}

// frameFeatures emits [rms, zcr] per full frame, flattened.
func frameFeatures(samples []float64, frameSize int) []float32 {
	numFrames := len(samples) / frameSize
	features := make([]float32, 0, numFrames*2)

	for i := 0; i < numFrames; i++ {
		frame := samples[i*frameSize : (i+1)*frameSize]
		features = append(features, rms(frame), zeroCrossingRate(frame))
	}

	return features
}

func rms(frame []float64) float32 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return float32(math.Sqrt(sum / float64(len(frame))))
}

func zeroCrossingRate(frame []float64) float32 {
	var crossings int
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float32(crossings) / float32(len(frame))
}
