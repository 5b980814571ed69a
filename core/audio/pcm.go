package audio

import "encoding/binary"

// ValidatePCM16 checks that data is a plausible signed 16-bit little-endian
// mono stream: non-empty and sample aligned.
func ValidatePCM16(data []byte) error {
	if len(data) == 0 {
		return &DecodeError{Reason: "empty payload"}
	}
	if len(data)%2 != 0 {
		return &DecodeError{Reason: "odd byte count for 16-bit samples"}
	}
	return nil
}

// DecodePCM16 converts little-endian PCM16 bytes into samples.
func DecodePCM16(data []byte) ([]int16, error) {
	if err := ValidatePCM16(data); err != nil {
		return nil, err
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// Float32Samples decodes PCM16 bytes and normalizes each sample into the
// [-1, 1) range used by float-based output devices.
func Float32Samples(data []byte) ([]float32, error) {
	samples, err := DecodePCM16(data)
	if err != nil {
		return nil, err
	}

	normalized := make([]float32, len(samples))
	for i, sample := range samples {
		normalized[i] = float32(sample) / 32768
	}
	return normalized, nil
}

// Duration returns the playback length in seconds of a PCM16 mono stream.
func Duration(data []byte, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(len(data)/2) / float64(sampleRate)
}
