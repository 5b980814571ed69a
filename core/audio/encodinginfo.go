package audio

const (
	// CaptureSampleRate is the rate microphone audio is recorded at before
	// it is packaged for upload.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the rate the interview service synthesizes
	// speech at.
	PlaybackSampleRate = 24000

	FormatLinear16 = encodingFormat("linear16")
)

func CaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Format: FormatLinear16}
}

func PlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: FormatLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// BytesPerSecond returns the byte rate of mono audio in this encoding, or -1
// if the format is unknown.
func (e EncodingInfo) BytesPerSecond() int {
	byteSize := e.Format.ByteSize()
	if byteSize <= 0 {
		return -1
	}
	return e.SampleRate * byteSize
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case FormatLinear16:
		return 2
	}
	return -1
}
