package audio

import "encoding/binary"

// wav container constants for a minimal RIFF parse.
const riffHeaderSize = 12

// pcmSamples returns the raw PCM16 samples from data, stripping a WAV
// container if one is present. Synthesis backends return either bare PCM or
// a WAV file depending on the model, so both must play the same way.
func pcmSamples(data []byte) []byte {
	if len(data) < riffHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return data
	}

	// Walk the chunk list looking for "data". Chunks are word-aligned.
	offset := riffHeaderSize
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if chunkID == "data" {
			end := body + chunkSize
			if end > len(data) {
				end = len(data)
			}
			return data[body:end]
		}

		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	// Malformed container: play it as-is rather than silently dropping it.
	return data
}
